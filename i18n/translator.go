package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves message templates for error codes. A code is
// "<scope>.<kind>" (for example "integer.invalid"). Templates may contain
// {param} placeholders that fields fill in when they fail. data is optional
// metadata; the built-in dictionary ignores it.
type Translator interface {
	Message(code string, data map[string]string) string
}

// catalog: lang -> scope -> kind -> template.
var catalog = map[string]map[string]map[string]string{
	"en": {
		"field": {
			"required":         "This field is required.",
			"null":             "This field may not be null.",
			"validator_failed": "Invalid value.",
		},
		"string": {
			"invalid":    "Not a valid string.",
			"blank":      "This field may not be blank.",
			"max_length": "Longer than maximum length {max_length}.",
			"min_length": "Shorter than minimum length {min_length}.",
		},
		"integer": {
			"invalid":           "A valid integer is required.",
			"max_value":         "Must be at most {max_value}.",
			"min_value":         "Must be at least {min_value}.",
			"max_string_length": "String value too large.",
		},
		"float": {
			"invalid":           "A valid number is required.",
			"max_value":         "Must be at most {max_value}.",
			"min_value":         "Must be at least {min_value}.",
			"max_string_length": "String value too large.",
		},
		"boolean": {
			"invalid": "{input} is not a valid boolean.",
		},
		"date": {
			"invalid": "Date has wrong format. Use one of these formats instead: {format}.",
		},
		"datetime": {
			"invalid": "Datetime has wrong format. Use one of these formats instead: {format}.",
			"date":    "Expected a datetime but got a date.",
		},
		"uuid": {
			"invalid": "{value} is not a valid UUID.",
		},
		"list": {
			"not_a_list": "Expected a list of items but got type \"{input_type}\".",
			"empty":      "This list may not be empty.",
			"min_length": "Shorter than minimum length {min_length}.",
			"max_length": "Longer than maximum length {max_length}.",
		},
		"contract": {
			"invalid":    "Invalid data. Expected a dictionary, but got {datatype}.",
			"not_a_list": "Expected a list of items but got type \"{input_type}\".",
		},
		"validate": {
			"choice": "{input} is not a valid choice.",
		},
		"rules": {
			"equal":        "Must be equal to {other}.",
			"at_least_one": "At least one item is required.",
			"unique":       "Duplicate value {value}.",
		},
	},
	"ja": {
		"field": {
			"required":         "必須項目です。",
			"null":             "null は指定できません。",
			"validator_failed": "値が不正です。",
		},
		"string": {
			"invalid":    "文字列が不正です。",
			"blank":      "空文字は指定できません。",
			"max_length": "最大長 {max_length} を超えています。",
			"min_length": "最小長 {min_length} に達していません。",
		},
		"integer": {
			"invalid":   "整数を指定してください。",
			"max_value": "{max_value} 以下を指定してください。",
			"min_value": "{min_value} 以上を指定してください。",
		},
		"float": {
			"invalid":   "数値を指定してください。",
			"max_value": "{max_value} 以下を指定してください。",
			"min_value": "{min_value} 以上を指定してください。",
		},
		"boolean": {
			"invalid": "{input} は真偽値ではありません。",
		},
		"date": {
			"invalid": "日付の形式が不正です。次の形式を使用してください: {format}。",
		},
		"datetime": {
			"invalid": "日時の形式が不正です。次の形式を使用してください: {format}。",
			"date":    "日時を指定してください（日付が指定されました）。",
		},
		"uuid": {
			"invalid": "{value} は UUID ではありません。",
		},
		"list": {
			"not_a_list": "配列を指定してください（\"{input_type}\" が指定されました）。",
			"empty":      "空の配列は指定できません。",
		},
		"contract": {
			"invalid": "オブジェクトを指定してください（{datatype} が指定されました）。",
		},
	},
}

// dictTranslator is the built-in dictionary-based Translator. Codes missing
// from the selected language fall back to English, then to the code itself.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	scope, kind, ok := strings.Cut(code, ".")
	if !ok {
		scope, kind = "field", code
	}
	if msg, ok := catalog[t.lang][scope][kind]; ok {
		return msg
	}
	if msg, ok := catalog["en"][scope][kind]; ok {
		return msg
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja"). Fields
// resolve their templates at construction, so the switch affects fields
// built afterwards.
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a template for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}

// Scope returns every template of a scope keyed by kind, resolved through the
// current Translator.
func Scope(scope string) map[string]string {
	kinds := catalog["en"][scope]
	out := make(map[string]string, len(kinds))
	for kind := range kinds {
		out[kind] = T(scope+"."+kind, nil)
	}
	return out
}

package contracts

// missingType is the type of the Missing sentinel. It is unexported so no other
// value can ever compare equal to Missing.
type missingType struct{}

func (missingType) String() string { return "<missing>" }

// Missing denotes "key absent from input" or "no value computed yet". It is
// distinct from nil, which denotes an explicit null.
var Missing any = missingType{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missingType)
	return ok
}

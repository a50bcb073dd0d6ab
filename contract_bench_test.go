package contracts_test

import (
	"bytes"
	"fmt"
	"strconv"
	"testing"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/fields"
	"github.com/reoring/contracts/source"
)

func benchItemContract(tb testing.TB, many bool) *contracts.Contract {
	tb.Helper()
	meta := contracts.Define("Meta").
		Field("score", fields.Integer(fields.MinValue(0))).
		MustBuild()
	def := contracts.Define("Item").
		Field("id", fields.String()).
		Field("name", fields.String()).
		Field("age", fields.Integer()).
		Field("active", fields.Boolean()).
		Field("meta", fields.Nested(meta)).
		MustBuild()
	c, err := contracts.New(def, contracts.WithMany(many))
	if err != nil {
		tb.Fatalf("contract: %v", err)
	}
	return c
}

// generateItems returns a JSON array of objects of the form:
// [{"id":"obj_0","name":"n0","age":0,"active":true,"meta":{"score":0},"k0":"v0",...}, ...]
func generateItems(numObjects int, extraFields int) []byte {
	var buf bytes.Buffer
	buf.Grow(numObjects * (64 + extraFields*16))
	buf.WriteByte('[')
	for i := 0; i < numObjects; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		fmt.Fprintf(&buf, "\"id\":\"obj_%d\",", i)
		fmt.Fprintf(&buf, "\"name\":\"n%d\",", i)
		fmt.Fprintf(&buf, "\"age\":%d,", i)
		buf.WriteString("\"active\":" + strconv.FormatBool(i%2 == 0) + ",")
		fmt.Fprintf(&buf, "\"meta\":{\"score\":%d}", i)
		for k := 0; k < extraFields; k++ {
			fmt.Fprintf(&buf, ",\"k%d\":\"v%d_%d\"", k, i, k)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func Benchmark_Load_Object_Small(b *testing.B) {
	c := benchItemContract(b, false)
	in := map[string]any{"id": "u_1", "name": "alice", "age": "30", "active": "true", "meta": map[string]any{"score": 1}}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Load(in); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Load_Object_Small_Invalid(b *testing.B) {
	c := benchItemContract(b, false)
	in := map[string]any{"id": "", "age": "x", "meta": map[string]any{"score": -1}}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Load(in); err == nil {
			b.Fatal("expected an error")
		}
	}
}

func Benchmark_Dump_Object_Small(b *testing.B) {
	c := benchItemContract(b, false)
	in := map[string]any{"id": "u_1", "name": "alice", "age": 30, "active": true, "meta": map[string]any{"score": 1}}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Dump(in); err != nil {
			b.Fatal(err)
		}
	}
}

const (
	hugeObjects   = 10000
	hugeExtraKeys = 8
)

func Benchmark_DecodeAndLoad_HugeArray_JSON(b *testing.B) {
	c := benchItemContract(b, true)
	data := generateItems(hugeObjects, hugeExtraKeys)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		doc, err := source.DecodeBytes(data, source.Options{Format: source.FormatJSON})
		if err != nil {
			b.Fatal(err)
		}
		if _, err := c.Load(doc); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Decode_HugeArray_JSON(b *testing.B) {
	data := generateItems(hugeObjects, hugeExtraKeys)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := source.DecodeBytes(data, source.Options{Format: source.FormatJSON}); err != nil {
			b.Fatal(err)
		}
	}
}

package types

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecord_RoundTripKeepsOrderAndValues(t *testing.T) {
	t.Parallel()

	in := `{"z":1,"a":{"nested":[1,2.50,"x"]},"So_HSQ_BS":"001","note":"<b>Đơn vị</b>","n":null}`
	r, err := ParseRecord([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"z", "a", "So_HSQ_BS", "note", "n"}, r.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	out, err := r.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != in {
		t.Fatalf("round trip:\n got %s\nwant %s", out, in)
	}
}

func TestRecord_Text(t *testing.T) {
	t.Parallel()

	r, err := ParseRecord([]byte(`{"s":" a ","i":42,"f":1.5e3,"t":true,"b":false,"n":null,"o":{},"l":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"s": " a ", "i": "42", "f": "1.5e3", "t": "true", "b": "", "n": "", "o": "", "l": "", "missing": ""}
	for k, w := range want {
		if got := r.Text(k); got != w {
			t.Fatalf("Text(%q)=%q want %q", k, got, w)
		}
	}
	if _, ok := r.String("i"); ok {
		t.Fatal("String must only accept JSON strings")
	}
}

func TestRecord_SetReplacesInPlaceOrAppends(t *testing.T) {
	t.Parallel()

	r, err := ParseRecord([]byte(`{"don_vi":"A1","x":1}`))
	if err != nil {
		t.Fatal(err)
	}
	r.SetString("don_vi", "B2")
	r.SetString("id", "<7>")
	out, err := r.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"don_vi":"B2","x":1,"id":"<7>"}`; string(out) != want {
		t.Fatalf("got %s want %s", out, want)
	}

	var zero Record
	zero.SetString("k", "v")
	if zero.Len() != 1 {
		t.Fatalf("len=%d", zero.Len())
	}
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	r, _ := ParseRecord([]byte(`{"a":"1"}`))
	c := r.Clone()
	c.SetString("a", "2")
	c.SetString("b", "3")
	if v, _ := r.String("a"); v != "1" || r.Len() != 1 {
		t.Fatalf("original changed: a=%q len=%d", v, r.Len())
	}
}

func TestRecord_Object(t *testing.T) {
	t.Parallel()

	r, _ := ParseRecord([]byte(`{"personal_info":{"ho_chu_dem_ten":"A"},"flat":"x"}`))
	info, ok := r.Object("personal_info")
	if !ok {
		t.Fatal("expected object")
	}
	if name, _ := info.String("ho_chu_dem_ten"); name != "A" {
		t.Fatalf("name=%q", name)
	}
	if _, ok := r.Object("flat"); ok {
		t.Fatal("string is not an object")
	}
}

func TestRecord_ToMap(t *testing.T) {
	t.Parallel()

	r, _ := ParseRecord([]byte(`{"a":1,"b":{"c":"d"}}`))
	m, err := r.ToMap()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"a": float64(1), "b": map[string]any{"c": "d"}}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("map (-want +got):\n%s", diff)
	}
}

func TestParseRecord_Rejects(t *testing.T) {
	t.Parallel()

	if _, err := ParseRecord([]byte(`[1]`)); !errors.Is(err, ErrNotObject) {
		t.Fatalf("array err=%v", err)
	}
	if _, err := ParseRecord([]byte(`{"a":1} {}`)); err == nil {
		t.Fatal("expected trailing data error")
	}
	if _, err := ParseRecord([]byte(`{"a":`)); err == nil {
		t.Fatal("expected syntax error")
	}
}

package ulog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

type attitude struct {
	Timestamp uint64
	Q         [4]float32
	RollRate  float32 `ulog:"rollspeed"`
	Armed     bool
	Mode      uint8
	Seq       uint16
}

func TestFieldsOf(t *testing.T) {
	want := []Field{
		TimestampField,
		Array(Float32, "q", 4),
		Scalar(Float32, "rollspeed"),
		Scalar(Bool, "armed"),
		Scalar(Uint8, "mode"),
		Scalar(Uint16, "seq"),
	}
	for _, v := range []interface{}{attitude{}, &attitude{}} {
		got, err := FieldsOf(v)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("fields mismatch for %T (-want +got):\n%s", v, diff)
		}
	}

	invalid := []interface{}{
		42,
		nil,
		struct {
			Timestamp uint64
			N         int
		}{},
		struct {
			Timestamp uint64
			hidden    uint32
		}{},
		struct {
			Timestamp uint64
			Skipped   uint32 `ulog:"-"`
		}{},
		struct {
			Timestamp uint64
			Names     [2]string
		}{},
	}
	for _, v := range invalid {
		if _, err := FieldsOf(v); !errors.Is(err, ErrInvalidType) {
			t.Errorf("%T: wrong error: wanted=%v got=%v", v, ErrInvalidType, err)
		}
	}
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Timestamp": "timestamp",
		"GyroRadS":  "gyro_rad_s",
		"IMUTemp":   "imu_temp",
		"Accel3D":   "accel3_d",
		"X":         "x",
		"rawValue":  "raw_value",
	}
	for in, want := range tests {
		if got := snakeCase(in); got != want {
			t.Errorf("%s: wanted=%s got=%s", in, want, got)
		}
	}
}

func TestSortFields(t *testing.T) {
	fields := []Field{
		TimestampField,
		Scalar(Uint8, "a"),
		Scalar(Float32, "b"),
		Array(Uint8, "c", 3),
		Scalar(Float64, "d"),
		Scalar(Int16, "e"),
		Scalar(Uint32, "f"),
	}
	want := []Field{
		TimestampField,
		Scalar(Float64, "d"),
		Scalar(Float32, "b"),
		Scalar(Uint32, "f"),
		Scalar(Int16, "e"),
		Scalar(Uint8, "a"),
		Array(Uint8, "c", 3),
	}
	got := SortFields(fields)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sorted fields mismatch (-want +got):\n%s", diff)
	}
	if fields[1].Name != "a" {
		t.Error("SortFields modified its argument")
	}
	if _, err := packedSize(got); err != nil {
		t.Errorf("sorted fields need padding: %v", err)
	}
}

func TestStructRecord(t *testing.T) {
	rec := Struct{Name: "attitude", Value: attitude{
		Timestamp: 0x10,
		Q:         [4]float32{1, 0, 0, 0},
		Armed:     true,
		Mode:      3,
		Seq:       0x0201,
	}}
	p := rec.PackedBytes()
	if len(p) != 8+16+4+1+1+2 {
		t.Fatalf("wrong packed size: %d", len(p))
	}
	if p[0] != 0x10 || p[28] != 1 || p[29] != 3 || p[30] != 0x01 || p[31] != 0x02 {
		t.Errorf("unexpected encoding: %x", p)
	}
	if (Struct{Name: "bad", Value: 42}).Fields() != nil {
		t.Error("Fields of a non-struct should be nil")
	}
	if (Struct{Name: "bad", Value: struct{ N int }{}}).PackedBytes() != nil {
		t.Error("PackedBytes of an unencodable value should be nil")
	}
}

func TestWriterInitAndLog(t *testing.T) {
	sink := NewMemorySink()
	w, err := Open("rec.ulg", WithOpener(sink))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Init("", "v"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("wrong error: wanted=%v got=%v", ErrInvalidValue, err)
	}
	if s := w.State(); s != StateBuilding {
		t.Fatalf("failed Init changed the state to %s", s)
	}

	att := Struct{Name: "vehicle_attitude", Value: attitude{}}
	if err := w.Init("sys_name", "bench", att); err != nil {
		t.Fatal(err)
	}
	if s := w.State(); s != StateStreaming {
		t.Errorf("wrong state: wanted=%s got=%s", StateStreaming, s)
	}
	for i := 1; i <= 3; i++ {
		att.Value = attitude{Timestamp: uint64(i)}
		if err := w.Log(att); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Log(Struct{Name: "missing", Value: attitude{}}); !errors.Is(err, ErrLayoutNotFound) {
		t.Errorf("wrong error: wanted=%v got=%v", ErrLayoutNotFound, err)
	}

	s := summarizeMem(t, sink, "rec.ulg")
	if diff := cmp.Diff([]KeyValue{{Key: "sys_name", Value: "bench"}}, s.Infos); diff != "" {
		t.Errorf("infos mismatch (-want +got):\n%s", diff)
	}
	if n := s.Records("vehicle_attitude"); n != 3 {
		t.Errorf("wrong number of records: wanted=%d got=%d", 3, n)
	}
	layouts := w.Layouts()
	if len(layouts) != 1 || layouts[0].PackedSize() != 32 {
		t.Errorf("unexpected layouts: %v", layouts)
	}
}

func TestRegisterRecordInvalidStruct(t *testing.T) {
	sink := NewMemorySink()
	w, err := Open("bad.ulg", WithOpener(sink))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	records := map[string]Record{
		"Unexported": Struct{Name: "hidden", Value: struct {
			Timestamp uint64
			hidden    uint32
		}{}},
		"String": &Struct{Name: "text", Value: struct {
			Timestamp uint64
			Label     string
		}{}},
	}
	for name, r := range records {
		r := r
		t.Run(name, func(t *testing.T) {
			if _, err := w.RegisterRecord(r); !errors.Is(err, ErrInvalidType) {
				t.Errorf("wrong error: wanted=%v got=%v", ErrInvalidType, err)
			}
			if err := w.Init("sys_name", "bench", r); !errors.Is(err, ErrInvalidType) {
				t.Errorf("wrong init error: wanted=%v got=%v", ErrInvalidType, err)
			}
		})
	}
	if n := len(w.Layouts()); n != 0 {
		t.Errorf("wrong number of layouts: wanted=%d got=%d", 0, n)
	}
}

func TestWriterInitRetry(t *testing.T) {
	sink := NewMemorySink()
	w, err := Open("retry.ulg", WithOpener(sink))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	att := Struct{Name: "vehicle_attitude", Value: attitude{}}
	bad := Struct{Name: "bad name", Value: attitude{}}
	if err := w.Init("sys_name", "bench", att, bad); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("wrong error: wanted=%v got=%v", ErrInvalidName, err)
	}
	if err := w.Init("sys_name", "bench", att, att); !errors.Is(err, ErrDuplicateLayout) {
		t.Fatalf("wrong error: wanted=%v got=%v", ErrDuplicateLayout, err)
	}
	if n := len(w.Layouts()); n != 0 {
		t.Fatalf("failed Init registered %d layouts", n)
	}

	if err := w.Init("sys_name", "bench", att); err != nil {
		t.Fatal(err)
	}
	if err := w.Log(Struct{Name: "vehicle_attitude", Value: attitude{Timestamp: 1}}); err != nil {
		t.Fatal(err)
	}
	s := summarizeMem(t, sink, "retry.ulg")
	if diff := cmp.Diff([]KeyValue{{Key: "sys_name", Value: "bench"}}, s.Infos); diff != "" {
		t.Errorf("infos mismatch (-want +got):\n%s", diff)
	}
	if n := s.Records("vehicle_attitude"); n != 1 {
		t.Errorf("wrong number of records: wanted=%d got=%d", 1, n)
	}
}

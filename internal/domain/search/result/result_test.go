package result

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	it := Item{
		"page_content": "hello",
		"metadata": map[string]any{
			"title":    "Backup",
			"selfLink": "https://docs/backup",
			"source":   "crawler",
			"score":    0.9,
		},
	}

	r := Normalize(it)
	if r.PageContent == nil || *r.PageContent != "hello" {
		t.Fatalf("PageContent = %v", r.PageContent)
	}
	want := Metadata{{Key: "title", Value: "Backup"}, {Key: "selfLink", Value: "https://docs/backup"}}
	if !reflect.DeepEqual(r.Metadata, want) {
		t.Errorf("Metadata = %v, want %v", r.Metadata, want)
	}
}

func TestNormalize_MissingFields(t *testing.T) {
	r := Normalize(Item{})
	if r.PageContent != nil {
		t.Errorf("PageContent = %v, want nil", *r.PageContent)
	}
	if len(r.Metadata) != 0 {
		t.Errorf("Metadata = %v, want empty", r.Metadata)
	}

	r = Normalize(Item{"page_content": nil, "metadata": "not a map"})
	if r.PageContent != nil {
		t.Error("explicit null page_content should stay nil")
	}
	if len(r.Metadata) != 0 {
		t.Errorf("Metadata = %v, want empty", r.Metadata)
	}
}

func TestNormalize_NonStringContent(t *testing.T) {
	r := Normalize(Item{"page_content": 42.0})
	if r.PageContent == nil || *r.PageContent != "42" {
		t.Errorf("PageContent = %v", r.PageContent)
	}
}

func TestProject_FieldSubset(t *testing.T) {
	tests := []struct {
		name string
		src  map[string]any
		want Metadata
	}{
		{"only extras", map[string]any{"a": 1, "b": 2}, Metadata{}},
		{"title only", map[string]any{"title": "T", "x": 1}, Metadata{{Key: "title", Value: "T"}}},
		{"selfLink only", map[string]any{"selfLink": "L"}, Metadata{{Key: "selfLink", Value: "L"}}},
		{"null values kept", map[string]any{"title": nil}, Metadata{{Key: "title", Value: nil}}},
		{"nil map", nil, Metadata{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.src)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Project() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProject_Idempotent(t *testing.T) {
	content := "c"
	records := []Record{
		Normalize(Item{"page_content": content, "metadata": map[string]any{"title": "T", "selfLink": "L", "z": 1}}),
		Normalize(Item{"metadata": map[string]any{"other": true}}),
		{PageContent: &content, Metadata: Metadata{{Key: "selfLink", Value: "L"}, {Key: "title", Value: "T"}}},
	}
	for i, r := range records {
		once := r.Project()
		twice := once.Project()
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("record %d: project(project(r)) = %v, project(r) = %v", i, twice, once)
		}
	}
}

func TestMetadata_MarshalOrder(t *testing.T) {
	m := Project(map[string]any{"selfLink": "L", "title": "T", "x": 1})
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"title":"T","selfLink":"L"}` {
		t.Errorf("json = %s", data)
	}

	empty, _ := json.Marshal(Metadata{})
	if string(empty) != `{}` {
		t.Errorf("empty json = %s", empty)
	}
}

func TestRecord_JSON(t *testing.T) {
	r := Normalize(Item{"metadata": map[string]any{"title": "T"}})
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"page_content":null,"metadata":{"title":"T"}}` {
		t.Errorf("json = %s", data)
	}

	var back Record
	if err := json.Unmarshal([]byte(`{"page_content":"p","metadata":{"title":"T","junk":1}}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := back.Metadata.Get("junk"); ok {
		t.Error("unmarshal kept a non-projected key")
	}
	if v, _ := back.Metadata.Get("title"); v != "T" {
		t.Errorf("title = %v", v)
	}
}

func TestRecord_ItemRoundTrip(t *testing.T) {
	content := "p"
	r := Record{PageContent: &content, Metadata: Metadata{{Key: "title", Value: "T"}}}
	back := Normalize(r.Item())
	if !reflect.DeepEqual(back, r) {
		t.Errorf("Normalize(r.Item()) = %v, want %v", back, r)
	}
}

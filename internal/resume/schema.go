package resume

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// SchemaJSON returns the JSON Schema that extracted and customized data must satisfy.
func SchemaJSON() string {
	return string(schemaJSON)
}

// ErrInvalidShape is wrapped by every Parse failure.
var ErrInvalidShape = errors.New("resume data does not match schema")

// Parse validates raw oracle output against the schema and decodes it.
// Explicit nulls are accepted and normalized; wrong types are rejected.
func Parse(raw []byte) (Data, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Data{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return Data{}, fmt.Errorf("%w: %s", ErrInvalidShape, strings.Join(msgs, "; "))
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	data.Normalize()
	return data, nil
}

// Normalize replaces every nil list with an empty one so consumers never see null.
func (d *Data) Normalize() {
	d.Education = nonNil(d.Education)
	d.Projects = nonNil(d.Projects)
	d.Experience = nonNil(d.Experience)
	d.Skills = nonNil(d.Skills)
	for i := range d.Projects {
		d.Projects[i].Technologies = nonNil(d.Projects[i].Technologies)
	}
	for i := range d.Experience {
		d.Experience[i].Responsibilities = nonNil(d.Experience[i].Responsibilities)
	}
	d.OtherInfo.Certifications = nonNil(d.OtherInfo.Certifications)
	d.OtherInfo.Languages = nonNil(d.OtherInfo.Languages)
	d.OtherInfo.Achievements = nonNil(d.OtherInfo.Achievements)
}

// JSON serializes the normalized data.
func (d Data) JSON() ([]byte, error) {
	d = d.Clone()
	return json.Marshal(d)
}

// Clone returns a deep copy.
func (d Data) Clone() Data {
	out := d
	out.Education = append([]Education{}, d.Education...)
	out.Projects = make([]Project, len(d.Projects))
	for i, p := range d.Projects {
		p.Technologies = append([]string{}, p.Technologies...)
		out.Projects[i] = p
	}
	out.Experience = make([]Experience, len(d.Experience))
	for i, e := range d.Experience {
		e.Responsibilities = append([]string{}, e.Responsibilities...)
		out.Experience[i] = e
	}
	out.Skills = append([]string{}, d.Skills...)
	out.OtherInfo.Certifications = append([]string{}, d.OtherInfo.Certifications...)
	out.OtherInfo.Languages = append([]string{}, d.OtherInfo.Languages...)
	out.OtherInfo.Achievements = append([]string{}, d.OtherInfo.Achievements...)
	return out
}

// WithSkills returns a copy of d where only Skills is replaced.
func (d Data) WithSkills(skills []string) Data {
	out := d.Clone()
	out.Skills = append([]string{}, skills...)
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package urn

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sensor is the structured description behind one sensor identifier.
type Sensor struct {
	Authority string `validate:"required,excludesall=0x3A"`
	Label     string `validate:"required,excludesall=0x3A"`

	// StandardName is the CF standard name of the measured quantity.
	// Name is the fallback identity when no standard name exists.
	StandardName string
	Name         string

	// Discriminant disambiguates two sensors sharing a standard name.
	Discriminant string

	CellMethods []CellMethod

	// Intervals are magnitude+unit tokens, e.g. "PT1H". An interval is
	// only meaningful together with at least one cell method.
	Intervals []string

	VerticalDatum string
	Bounds        string
}

// use a single instance of Validate, it caches struct info
var validate = validator.New()

// Validate checks the record before encoding. Colons inside the authority
// or station label would corrupt the identifier's field structure.
func (s *Sensor) Validate() error {
	return validate.Struct(s)
}

// CellMethodsAttribute renders the record's statistical treatment as a CF
// cell_methods attribute value. When each method has a matching interval
// they are fused pairwise as "domain: method (interval: X)"; with
// mismatched counts all intervals are appended after the joined methods.
func (s Sensor) CellMethodsAttribute() string {
	var methods []string
	for _, cm := range s.CellMethods {
		methods = append(methods, fmt.Sprintf("%s: %s", cm.Domain, cm.Method))
	}
	if len(methods) == 0 {
		return ""
	}
	if len(s.Intervals) == len(methods) {
		fused := make([]string, len(methods))
		for i, m := range methods {
			fused[i] = fmt.Sprintf("%s (interval: %s)", m, strings.ToUpper(s.Intervals[i]))
		}
		return strings.Join(fused, " ")
	}
	out := strings.Join(methods, " ")
	for _, iv := range s.Intervals {
		out += fmt.Sprintf(" (interval: %s)", strings.ToUpper(iv))
	}
	return out
}

// Encoder renders Sensor records as identifier strings. NameSource
// supplies the fallback base name for records with neither a standard name
// nor a variable name; leave it nil for the random default.
type Encoder struct {
	NameSource func() string
}

// Encode renders the canonical identifier for the record.
func (e Encoder) Encode(s Sensor) (string, error) {
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	name := s.StandardName
	if name == "" {
		name = s.Name
	}
	if name == "" {
		src := e.NameSource
		if src == nil {
			src = randomName
		}
		name = src()
		log.Printf("urn: no standard_name or name, generated variable name %q", name)
	}
	if s.Discriminant != "" {
		name = fmt.Sprintf("%s-%s", name, s.Discriminant)
	}

	var extras []string

	// Cell methods are grouped by domain, sorted alphabetically, with the
	// methods of one domain joined by commas.
	var pairs []CellMethod
	for _, cm := range s.CellMethods {
		domain := cleanToken(cm.Domain)
		if domain != "time" && domain != "area" {
			continue // comments and foreign domains are not encoded
		}
		pairs = append(pairs, CellMethod{Domain: domain, Method: cleanToken(cm.Method)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Domain != pairs[j].Domain {
			return pairs[i].Domain < pairs[j].Domain
		}
		return pairs[i].Method < pairs[j].Method
	})
	var mems []string
	for _, p := range pairs {
		mems = append(mems, p.Domain+":"+p.Method)
	}
	if len(mems) > 0 {
		extras = append(extras, "cell_methods="+strings.Join(mems, ","))
	}

	if s.Bounds != "" {
		extras = append(extras, "bounds="+s.Bounds)
	}
	if s.VerticalDatum != "" {
		extras = append(extras, "vertical_datum="+strings.ToUpper(s.VerticalDatum))
	}

	if len(s.Intervals) > 0 {
		if len(mems) == 0 {
			return "", fmt.Errorf("%w: an interval without a cell method is meaningless", ErrGrammar)
		}
		seen := make(map[string]bool)
		var ivs []string
		for _, iv := range s.Intervals {
			iv = strings.ToUpper(iv)
			if !seen[iv] {
				seen[iv] = true
				ivs = append(ivs, iv)
			}
		}
		extras = append(extras, "interval="+strings.Join(ivs, ","))
	}

	component := name
	if len(extras) > 0 {
		component = name + "#" + strings.Join(extras, ";")
	}
	u := URN{
		AssetType: "sensor",
		Authority: s.Authority,
		Label:     s.Label,
		Component: component,
	}
	return u.String(), nil
}

// Encode renders the canonical identifier using the default encoder.
func Encode(s Sensor) (string, error) {
	return Encoder{}.Encode(s)
}

// Decode parses an identifier string back into a Sensor record. It is
// tolerant of application-level oddities such as unknown clauses, but a
// string without the urn:ioos:sensor prefix or the minimum field count
// fails with ErrMalformed.
func Decode(s string) (Sensor, error) {
	u, err := Parse(s)
	if err != nil {
		return Sensor{}, err
	}
	if u.AssetType != "sensor" {
		return Sensor{}, fmt.Errorf("%w: asset type %q, want sensor", ErrMalformed, u.AssetType)
	}

	out := Sensor{Authority: u.Authority, Label: u.Label}
	base := u.Component
	extras := ""
	if i := strings.Index(base, "#"); i >= 0 {
		base, extras = base[:i], base[i+1:]
	}

	out.StandardName = base
	if i := strings.Index(base, "-"); i >= 0 {
		out.StandardName = base[:i]
		out.Discriminant = base[strings.LastIndex(base, "-")+1:]
	}

	if extras == "" {
		return out, nil
	}
	for _, clause := range strings.Split(extras, ";") {
		key, value, found := strings.Cut(clause, "=")
		if !found || value == "" {
			continue
		}
		switch key {
		case "cell_methods":
			for _, item := range strings.Split(value, ",") {
				// Undo the identifier cleaning so the item reads
				// like a CF attribute again, then tokenize it.
				text := strings.ReplaceAll(strings.ReplaceAll(item, "_", " "), ":", ": ")
				methods, intervals := ParseCellMethods(text)
				out.CellMethods = append(out.CellMethods, methods...)
				out.Intervals = append(out.Intervals, intervals...)
			}
		case "interval":
			for _, iv := range strings.Split(value, ",") {
				out.Intervals = append(out.Intervals, strings.ToUpper(iv))
			}
		case "vertical_datum":
			out.VerticalDatum = strings.ToUpper(strings.ReplaceAll(value, "_", " "))
		case "bounds":
			out.Bounds = value
		}
	}
	return out, nil
}

// FromAttributes builds a Sensor record for a variable from its CF
// attributes. The cell_methods attribute is parsed into pairs and fused
// intervals; an interval attribute adds further interval tokens.
func FromAttributes(authority, label, name string, attrs map[string]any) Sensor {
	str := func(key string) string {
		s, _ := attrs[key].(string)
		return s
	}
	s := Sensor{
		Authority:     authority,
		Label:         label,
		Name:          name,
		StandardName:  str("standard_name"),
		Discriminant:  str("discriminant"),
		VerticalDatum: str("vertical_datum"),
		Bounds:        str("bounds"),
	}
	if cm := str("cell_methods"); cm != "" {
		s.CellMethods, s.Intervals = ParseCellMethods(cm)
	}
	switch iv := attrs["interval"].(type) {
	case string:
		s.Intervals = append(s.Intervals, iv)
	case []string:
		s.Intervals = append(s.Intervals, iv...)
	}
	return s
}

const nameAlphabet = "abcdefghijklmnopqrstuvwxyz"

func randomName() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = nameAlphabet[rand.Intn(len(nameAlphabet))]
	}
	return string(b)
}

package reports

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/salesync/reports_backend/utils"
)

// FlatResponses is a string to string map that remembers insertion order.
// Setting an existing key replaces its value in place.
type FlatResponses struct {
	keys   []string
	values map[string]string
}

func NewFlatResponses() *FlatResponses {
	return &FlatResponses{values: make(map[string]string)}
}

func (f *FlatResponses) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

func (f *FlatResponses) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *FlatResponses) Keys() []string {
	return append([]string(nil), f.keys...)
}

func (f *FlatResponses) Len() int {
	return len(f.keys)
}

func (f *FlatResponses) Map() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// jsonObject keeps JSON object members in document order.
type jsonObject []jsonMember

type jsonMember struct {
	Key   string
	Value interface{}
}

func (o jsonObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeOrderedJSON parses one JSON document keeping object member order.
func decodeOrderedJSON(text string) (interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := decodeOrderedValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid character after top-level value")
	}
	return v, nil
}

func decodeOrderedValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := jsonObject{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			val, err := decodeOrderedValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, jsonMember{Key: key, Value: val})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []interface{}{}
		for dec.More() {
			val, err := decodeOrderedValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}

func scalarText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// members normalizes both decoded forms of an object. Plain maps are walked
// in key order.
func members(node interface{}) (jsonObject, bool) {
	switch x := node.(type) {
	case jsonObject:
		return x, true
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := make(jsonObject, 0, len(keys))
		for _, k := range keys {
			obj = append(obj, jsonMember{Key: k, Value: x[k]})
		}
		return obj, true
	}
	return nil, false
}

// pairEntry reports whether obj is exactly {label, value} (keys compared
// case-insensitively) and returns both values.
func pairEntry(obj jsonObject, label, value string) (interface{}, interface{}, bool) {
	if len(obj) != 2 {
		return nil, nil, false
	}
	var l, v interface{}
	var hasLabel, hasValue bool
	for _, m := range obj {
		switch strings.ToLower(m.Key) {
		case label:
			l, hasLabel = m.Value, true
		case value:
			v, hasValue = m.Value, true
		}
	}
	if !hasLabel || !hasValue {
		return nil, nil, false
	}
	return l, v, true
}

func isContainer(v interface{}) bool {
	switch v.(type) {
	case jsonObject, map[string]interface{}, []interface{}:
		return true
	}
	return false
}

// FlattenResponses turns a decoded survey payload into question keys,
// normalized like user names, and text answers. {question, answer} and {name, value} objects become
// one entry; other objects contribute their scalar members and are walked
// for nested objects and lists. Top-level scalars yield nothing.
func FlattenResponses(node interface{}) *FlatResponses {
	flat := NewFlatResponses()
	flattenInto(flat, node)
	return flat
}

// FlattenResponsesJSON decodes text and flattens it.
func FlattenResponsesJSON(text string) (*FlatResponses, error) {
	node, err := decodeOrderedJSON(text)
	if err != nil {
		return NewFlatResponses(), err
	}
	return FlattenResponses(node), nil
}

func flattenInto(flat *FlatResponses, node interface{}) {
	if list, ok := node.([]interface{}); ok {
		for _, item := range list {
			flattenInto(flat, item)
		}
		return
	}
	obj, ok := members(node)
	if !ok {
		return
	}
	for _, pair := range [][2]string{{"question", "answer"}, {"name", "value"}} {
		if l, v, ok := pairEntry(obj, pair[0], pair[1]); ok {
			if key := utils.NormalizeNameForMatch(scalarText(l)); key != "" {
				flat.Set(key, strings.TrimSpace(scalarText(v)))
			}
			return
		}
	}
	for _, m := range obj {
		if isContainer(m.Value) {
			flattenInto(flat, m.Value)
			continue
		}
		flat.Set(utils.NormalizeNameForMatch(m.Key), strings.TrimSpace(scalarText(m.Value)))
	}
}

var (
	customerIDProbes = []string{
		"goldrush id", "goldfish id", "goldrushid", "goldfishid", "goldrush number",
		"goldrush", "customer id", "id number", "id_number", "id",
	}
	firstNameProbes = []string{"customername", "customer name", "first name", "firstname", "name"}
	lastNameProbes  = []string{"customer surname", "surname", "last name", "lastname"}
	fullNameProbes  = []string{"customer full name", "fullname", "full name", "client name", "customer"}
)

// findByProbes returns the first non-empty value whose key contains a probe.
// Probes are tried in priority order, keys in insertion order.
func findByProbes(flat *FlatResponses, probes []string, skip func(key string) bool) string {
	for _, probe := range probes {
		for _, key := range flat.keys {
			if skip != nil && skip(key) {
				continue
			}
			if !strings.Contains(key, probe) {
				continue
			}
			if v := strings.TrimSpace(flat.values[key]); v != "" {
				return v
			}
		}
	}
	return ""
}

func isLastNameKey(key string) bool {
	for _, probe := range lastNameProbes {
		if strings.Contains(key, probe) {
			return true
		}
	}
	return false
}

// ExtractCustomerFields finds the customer identifier and display name in a
// flattened payload. The name is "first last" when either part is present,
// otherwise a full name field.
func ExtractCustomerFields(flat *FlatResponses) (string, string) {
	if flat == nil {
		return "", ""
	}
	id := findByProbes(flat, customerIDProbes, nil)
	last := findByProbes(flat, lastNameProbes, nil)
	first := findByProbes(flat, firstNameProbes, isLastNameKey)

	if first != "" || last != "" {
		return id, strings.TrimSpace(first + " " + last)
	}
	return id, findByProbes(flat, fullNameProbes, nil)
}

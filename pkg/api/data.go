package api

import "maps"

// Data represents the named values accumulated across a flow's steps, and
// the private context a handler carries between invocations
type Data map[Name]any

// Merge returns a new Data with the entries of other layered over the
// receiver. Keys are only added or overwritten, never removed
func (d Data) Merge(other Data) Data {
	if d == nil && other == nil {
		return Data{}
	}
	res := make(Data, len(d)+len(other))
	maps.Copy(res, d)
	maps.Copy(res, other)
	return res
}

// Clone returns a shallow copy of the data
func (d Data) Clone() Data {
	if d == nil {
		return Data{}
	}
	return maps.Clone(d)
}

// GetString retrieves a string value, returning defaultValue if the key is
// missing or holds a different type
func (d Data) GetString(name Name, defaultValue string) string {
	val, ok := d[name]
	if !ok {
		return defaultValue
	}
	str, ok := val.(string)
	if !ok {
		return defaultValue
	}
	return str
}

// Has reports whether the key is present
func (d Data) Has(name Name) bool {
	_, ok := d[name]
	return ok
}

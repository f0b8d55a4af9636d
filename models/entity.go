package models

// CipherProperty is the name of the single property the keystore stores per
// entity. Its value is opaque ciphertext produced elsewhere.
const CipherProperty = "cipher"

// Property is a binary property value. Only blob values are stored by the
// keystore.
type Property struct {
	Value []byte

	// ExcludeFromIndexes keeps the value out of provider-side indexes.
	// Ciphertext may be arbitrarily long, so the cipher property always sets it.
	ExcludeFromIndexes bool
}

// Properties maps property names to values.
type Properties map[string]Property

// Entity is a stored record. Both transports return this type from lookups
// and queries.
type Entity struct {
	Key        Key
	Properties Properties
}

// NewCipherEntity builds the entity the keystore writes for (kind, name):
// a single unindexed cipher property holding content.
func NewCipherEntity(kind, name string, content []byte) Entity {
	if content == nil {
		content = []byte{}
	}
	return Entity{
		Key: Key{Path: []PathElement{{Kind: kind, Name: name}}},
		Properties: Properties{
			CipherProperty: {Value: content, ExcludeFromIndexes: true},
		},
	}
}

// Name returns the leaf name of the entity's key.
func (e Entity) Name() string {
	return e.Key.Name()
}

// Cipher returns the cipher property value and whether it was present.
func (e Entity) Cipher() ([]byte, bool) {
	p, ok := e.Properties[CipherProperty]
	if !ok {
		return nil, false
	}
	return p.Value, true
}

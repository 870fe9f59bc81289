package ds

// LinkedHashMap is a map that remembers insertion order of its keys.
// Putting an existing key replaces the value and keeps the original position.
type LinkedHashMap[K comparable, V any] struct {
	hashMap map[K]V
	keys    []K
}

func NewLinkedHashMap[K comparable, V any]() *LinkedHashMap[K, V] {
	return &LinkedHashMap[K, V]{
		hashMap: map[K]V{},
		keys:    make([]K, 0),
	}
}

func (r *LinkedHashMap[K, V]) Len() int {
	return len(r.keys)
}

func (r *LinkedHashMap[K, V]) Keys() []K {
	return ShallowCopy(r.keys)
}

func (r *LinkedHashMap[K, V]) Put(key K, value V) {
	_, existed := r.hashMap[key]
	if !existed {
		r.keys = append(r.keys, key)
	}
	r.hashMap[key] = value
}

func (r *LinkedHashMap[K, V]) Get(key K) (V, bool) {
	value, ok := r.hashMap[key]
	return value, ok
}

// ForEach visits entries in insertion order and stops at the first error.
func (r *LinkedHashMap[K, V]) ForEach(visit func(key K, value V) error) error {
	for _, key := range r.keys {
		if err := visit(key, r.hashMap[key]); err != nil {
			return err
		}
	}
	return nil
}

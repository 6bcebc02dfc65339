package containers

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// set of ordered elements (group names, NIAs)
type Set[T cmp.Ordered] struct {
	elements	map[T]struct{}
}

type StringSet = Set[string]

type IntSet = Set[int]

// returns a new set holding the given elements
func NewSet[T cmp.Ordered](elements ...T) *Set[T] {
	s := &Set[T]{make(map[T]struct{})}
	s.Add(elements...)
	return s
}

func NewStringSet(elements ...string) *StringSet {
	return NewSet(elements...)
}

func NewIntSet(elements ...int) *IntSet {
	return NewSet(elements...)
}

// add the given elements to the set
func (s *Set[T]) Add(elements ...T) {
	for _, element := range elements {
		s.elements[element] = struct{}{}
	}
}

func (s *Set[T]) Contains(element T) bool {
	_, found := s.elements[element]
	return found
}

// returns the number of elements in the set
func (s *Set[T]) Len() int {
	return len(s.elements)
}

// returns all elements of the set in ascending order
func (s *Set[T]) Sorted() []T {
	elements := make([]T, 0, len(s.elements))
	for element := range s.elements {
		elements = append(elements, element)
	}
	slices.Sort(elements)
	return elements
}

func (s *Set[T]) String() string {
	var parts []string
	for _, element := range s.Sorted() {
		parts = append(parts, fmt.Sprint(element))
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ","))
}

package containers

import (
	"reflect"
	"testing"
)

func TestSet_Add(t *testing.T) {
	set := NewStringSet()
	set.Add("A")
	if !set.Contains("A") {
		t.Fatal("\"A\" should be in the set but it's not")
	}
	set.Add("A")
	if set.Len() != 1 {
		t.Fatalf("set has number of elements != 1")
	}
}

func TestSet_Sorted(t *testing.T) {
	set := NewIntSet(1003, 1001, 1002, 1001)
	if sorted := set.Sorted(); !reflect.DeepEqual(sorted, []int{1001, 1002, 1003}) {
		t.Fatalf("unexpected sorted elements %v", sorted)
	}
	if set.String() != "{1001,1002,1003}" {
		t.Fatalf("unexpected string %s", set.String())
	}
}

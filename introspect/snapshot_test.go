package introspect

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type address struct {
	City string
	Zip  string
}

type customer struct {
	Name      string
	Addresses []address
	Labels    map[string]int
	Pet       *Dog
	secret    string
}

func TestSnapshot(t *testing.T) {
	p := NewReflect(nil)
	c := customer{
		Name:      "alice",
		Addresses: []address{{City: "Tokyo", Zip: "100"}},
		Labels:    map[string]int{"vip": 1},
		Pet:       &Dog{animal: animal{Legs: 4, name: "rex"}, Breed: "lab", age: 2},
		secret:    "s",
	}

	got := Snapshot(p, reflect.ValueOf(c), DefaultInstanceScope)

	assert.Equal(t, map[string]any{
		"Name":      "alice",
		"Addresses": []any{map[string]any{"City": "Tokyo", "Zip": "100"}},
		"Labels":    map[string]any{"vip": 1},
		"Pet":       "dog:lab",
	}, got)
}

type vehicle struct {
	Wheels int
	serial string
}

func (v *vehicle) Serial() string { return v.serial }

type Car struct {
	vehicle
	Model string
}

type SportsCar struct {
	Car
	Turbo bool
}

func TestSnapshot_PromotesBaseMembers(t *testing.T) {
	p := NewReflect(nil)
	car := &SportsCar{Car: Car{vehicle: vehicle{Wheels: 4, serial: "abc"}, Model: "gt"}, Turbo: true}

	got := Snapshot(p, reflect.ValueOf(car), DefaultInstanceScope)
	assert.Equal(t, map[string]any{
		"Turbo":  true,
		"Model":  "gt",
		"Wheels": 4,
		"Serial": "abc",
	}, got)
}

func TestSnapshot_Scalars(t *testing.T) {
	p := NewReflect(nil)

	assert.Nil(t, Snapshot(p, reflect.ValueOf((*Dog)(nil)), DefaultInstanceScope))
	assert.Nil(t, Snapshot(p, reflect.Value{}, DefaultInstanceScope))
	assert.Equal(t, 3, Snapshot(p, reflect.ValueOf(3), DefaultInstanceScope))
	assert.Equal(t, []byte("ab"), Snapshot(p, reflect.ValueOf([]byte("ab")), DefaultInstanceScope))
	assert.Equal(t, map[string]any{"1": "a"}, Snapshot(p, reflect.ValueOf(map[int]string{1: "a"}), DefaultInstanceScope))
}

package emgnet

import (
	"reflect"
	"testing"

	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/serializer"
)

func TestActivationSerialize(t *testing.T) {
	acts := []Activation{ReLU, Tanh, Sigmoid, LogSoftmax}
	for _, a := range acts {
		data, err := serializer.SerializeAny(a)
		if err != nil {
			t.Fatal(err)
		}
		var b Activation
		if err := serializer.DeserializeAny(data, &b); err != nil {
			t.Fatal(err)
		}
		if a != b {
			t.Errorf("%s came back as %s", a, b)
		}
	}
}

func TestFCSerialize(t *testing.T) {
	fc := NewFC(anyvec32.DefaultCreator{}, 7, 5)
	data, err := serializer.SerializeAny(fc)
	if err != nil {
		t.Fatal(err)
	}
	var newFC *FC
	if err := serializer.DeserializeAny(data, &newFC); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fc, newFC) {
		t.Fatal("incorrect result")
	}
}

func TestNetSerialize(t *testing.T) {
	c := anyvec32.DefaultCreator{}
	net := Net{
		NewFC(c, 6, 4),
		ReLU,
		&Dropout{KeepProb: 0.5},
		NewFC(c, 4, 2),
	}
	data, err := serializer.SerializeAny(net)
	if err != nil {
		t.Fatal(err)
	}
	var newNet Net
	if err := serializer.DeserializeAny(data, &newNet); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(net, newNet) {
		t.Fatal("networks differ")
	}
}

func TestSnapshotSerialize(t *testing.T) {
	net := Net{NewFC(anyvec32.DefaultCreator{}, 3, 2)}
	snap := TakeSnapshot(net.Parameters())
	data, err := serializer.SerializeAny(snap)
	if err != nil {
		t.Fatal(err)
	}
	var newSnap *Snapshot
	if err := serializer.DeserializeAny(data, &newSnap); err != nil {
		t.Fatal(err)
	}
	if !newSnap.Matches(net.Parameters()) {
		t.Fatal("snapshot changed through serialization")
	}
}

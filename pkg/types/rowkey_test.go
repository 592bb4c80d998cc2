package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowKeyEqual(t *testing.T) {
	tests := []struct {
		name string
		a    RowKey
		b    RowKey
		want bool
	}{
		{
			name: "same columns and values",
			a:    RowKey{"id": Number(1), "region": Text("eu")},
			b:    RowKey{"region": Text("eu"), "id": Number(1)},
			want: true,
		},
		{
			name: "different value",
			a:    RowKey{"id": Number(1)},
			b:    RowKey{"id": Number(2)},
			want: false,
		},
		{
			name: "different column set",
			a:    RowKey{"id": Number(1)},
			b:    RowKey{"id": Number(1), "region": Text("eu")},
			want: false,
		},
		{
			name: "kind mismatch is not equal",
			a:    RowKey{"id": Number(1)},
			b:    RowKey{"id": Text("1")},
			want: false,
		},
		{name: "empty keys equal", a: RowKey{}, b: RowKey{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			if tt.want {
				assert.Equal(t, tt.a.Fingerprint(), tt.b.Fingerprint(),
					"equal keys must share a fingerprint")
			}
		})
	}
}

func TestRowKeyFingerprintDistinguishesKinds(t *testing.T) {
	num := RowKey{"id": Number(1)}
	txt := RowKey{"id": Text("1")}
	assert.NotEqual(t, num.Fingerprint(), txt.Fingerprint(),
		"numeric 1 and text \"1\" must not collide")
}

func TestRowKeyCloneIsIndependent(t *testing.T) {
	orig := RowKey{"id": Number(1)}
	clone := orig.Clone()
	clone["id"] = Number(2)
	assert.True(t, orig["id"].Equal(Number(1)))
}

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetUint64FromStr(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0", 0, false},
		{"12345", 12345, false},
		{" 42 ", 42, false},
		{"0x10", 16, false},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for i, test := range tests {
		got, err := GetUint64FromStr(test.in)
		if test.wantErr {
			assert.Error(t, err, "case %v", i)
			continue
		}
		assert.NoError(t, err, "case %v", i)
		assert.Equal(t, test.want, got, "case %v", i)
	}
}

func TestAbsolutePath(t *testing.T) {
	assert.Equal(t, "/etc/counter.toml", AbsolutePath("/data", "/etc/counter.toml"))
	assert.Equal(t, "/data/counter.toml", AbsolutePath("/data", "counter.toml"))
}

package obis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Voltage(t *testing.T) {
	c, err := Parse("1.0.32.7.0.255")
	require.NoError(t, err)
	assert.Equal(t, Components{
		Media:           1,
		Channel:         0,
		Measurement:     32,
		MeasurementType: 7,
		Tariff:          0,
		Storage:         255,
	}, c)
	assert.Equal(t, Voltage, c.Classify())
}

func TestParse_LeadingZeros(t *testing.T) {
	c, err := Parse("01.00.001.7.0.255")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.Media)
	assert.Equal(t, uint64(0), c.Channel)
	assert.Equal(t, uint64(1), c.Measurement)
	// canonical form strips the leading zeros.
	assert.Equal(t, "1.0.1.7.0.255", c.String())
}

func TestParse_RoundTrip(t *testing.T) {
	for _, code := range []string{
		"1.0.1.8.0.255",
		"7.0.1.7.0.255",
		"8.0.0.0.0.255",
		"0.0.0.0.0.0",
		"99.99.99.99.99.99",
	} {
		c, err := Parse(code)
		require.NoError(t, err, code)
		assert.Equal(t, code, c.String())
	}
}

func TestParse_MalformedCode(t *testing.T) {
	for _, code := range []string{
		"invalid.code",
		"1.0.0.0.0",
		"1.0.0.0.0.255.1",
		"",
		"1",
	} {
		_, err := Parse(code)
		assert.ErrorIs(t, err, ErrMalformedCode, code)
		assert.False(t, IsValid(code), code)
	}
}

func TestParse_InvalidField(t *testing.T) {
	cases := []struct {
		code  string
		field string
	}{
		{"a.0.1.7.0.255", "a"},
		{"1.0.1.7.0.25x", "25x"},
		{"1..1.7.0.255", ""},
		{"1.0.1.7.0.+255", "+255"},
		{"1.0.1.7.0. 255", " 255"},
		{"-1.0.1.7.0.255", "-1"},
	}

	for _, tc := range cases {
		_, err := Parse(tc.code)
		require.ErrorIs(t, err, ErrInvalidField, tc.code)
		assert.Contains(t, err.Error(), fmt.Sprintf("%q", tc.field), tc.code)
		assert.False(t, IsValid(tc.code), tc.code)
	}
}

func TestParse_FieldOverflow(t *testing.T) {
	big := strings.Repeat("9", 25)
	_, err := Parse("1.0." + big + ".7.0.255")
	assert.ErrorIs(t, err, ErrFieldOverflow)
	assert.Contains(t, err.Error(), "index 2")
}

func TestClassify(t *testing.T) {
	cases := []struct {
		code string
		want CodeType
	}{
		{"1.0.0.0.0.255", Identification},
		{"7.0.0.0.0.255", Identification},
		{"1.0.1.7.0.255", Power},
		{"1.0.21.7.0.255", Power},
		{"1.0.22.7.0.255", Power},
		{"1.0.23.7.0.255", Power},
		{"1.0.32.7.0.255", Voltage},
		{"1.0.52.7.0.255", Voltage},
		{"1.0.72.7.0.255", Voltage},
		{"1.0.31.7.0.255", Current},
		{"1.0.51.7.0.255", Current},
		{"1.0.71.7.0.255", Current},
		{"1.0.1.8.0.255", Energy},
		{"1.0.13.7.0.255", PowerFactor},
		{"1.0.14.7.0.255", Frequency},
		{"7.0.1.7.0.255", Flow},
		{"7.0.1.8.0.255", Volume},
		{"7.0.41.7.0.255", Temperature},
		{"7.0.42.7.0.255", Pressure},
		{"8.0.1.7.0.255", Flow},
		{"8.0.1.8.0.255", Volume},
		{"6.0.1.8.0.255", Energy},
		{"6.0.10.7.0.255", Temperature},
		{"6.0.1.7.0.255", Flow},
		{"5.0.1.8.0.255", Energy},
		{"1.0.96.7.0.255", Unknown},
		{"42.0.1.7.0.255", Unknown}, // unknown media
	}
	for _, tc := range cases {
		c, err := Parse(tc.code)
		require.NoError(t, err, tc.code)
		assert.Equal(t, tc.want, c.Classify(), tc.code)
	}
}

func TestMediaClass(t *testing.T) {
	for media, want := range map[uint64]MediaClass{
		1:  MediaElectricity,
		7:  MediaGas,
		8:  MediaWater,
		4:  MediaHeat,
		5:  MediaCooling,
		42: MediaUnknown,
		0:  MediaUnknown,
	} {
		c := Components{Media: media}
		assert.Equal(t, want, c.MediaClass(), media)
	}
}

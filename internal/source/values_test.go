package source

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
)

func TestNormalizeValue(t *testing.T) {
	date := dialect.JSONType{Type: dialect.TypeString, Format: dialect.FormatDate}
	dateTime := dialect.JSONType{Type: dialect.TypeString, Format: dialect.FormatDateTime}
	str := dialect.JSONType{Type: dialect.TypeString}
	boolean := dialect.JSONType{Type: dialect.TypeBoolean}
	ts := time.Date(2004, 10, 19, 10, 23, 54, 0, time.UTC)
	name := "picard"
	var nilName *string

	tests := []struct {
		name string
		in   interface{}
		typ  dialect.JSONType
		want interface{}
	}{
		{"nil", nil, str, nil},
		{"bytes", []byte("picard"), str, "picard"},
		{"date", ts, date, "2004-10-19"},
		{"datetime", ts, dateTime, "2004-10-19T10:23:54Z"},
		{"pointer", &name, str, "picard"},
		{"nil pointer", nilName, str, nil},
		{"pointer to time", &ts, date, "2004-10-19"},
		{"valuer", sql.NullString{String: "vash", Valid: true}, str, "vash"},
		{"null valuer", sql.NullString{}, str, nil},
		{"uint8 bool", uint8(1), boolean, true},
		{"int bool", int64(0), boolean, false},
		{"int passthrough", int64(42), dialect.JSONType{Type: dialect.TypeInteger}, int64(42)},
		{"numeric text", []byte("42"), dialect.JSONType{Type: dialect.TypeInteger}, int64(42)},
		{"decimal text", "1.25", dialect.JSONType{Type: dialect.TypeNumber}, 1.25},
		{"non numeric text", "n/a", dialect.JSONType{Type: dialect.TypeInteger}, "n/a"},
		{"uint64 text", "18446744073709551615", dialect.JSONType{Type: dialect.TypeInteger}, uint64(18446744073709551615)},
		{"nan", math.NaN(), dialect.JSONType{Type: dialect.TypeNumber}, nil},
		{"inf float32", float32(math.Inf(1)), dialect.JSONType{Type: dialect.TypeNumber}, nil},
		{"nan text", "nan", dialect.JSONType{Type: dialect.TypeNumber}, nil},
		{"-inf text", "-inf", dialect.JSONType{Type: dialect.TypeNumber}, nil},
		{"finite float", 2.5, dialect.JSONType{Type: dialect.TypeNumber}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeValue(tt.in, tt.typ))
		})
	}
}

func TestParseCursor(t *testing.T) {
	v, err := parseCursor("42", dialect.JSONType{Type: dialect.TypeInteger})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = parseCursor("1.5", dialect.JSONType{Type: dialect.TypeNumber})
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	v, err = parseCursor("2005-10-19", dialect.JSONType{Type: dialect.TypeString, Format: dialect.FormatDate})
	require.NoError(t, err)
	assert.Equal(t, "2005-10-19", v)

	v, err = parseCursor("2005-10-19T10:00:00Z", dialect.JSONType{Type: dialect.TypeString, Format: dialect.FormatDateTime})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2005, 10, 19, 10, 0, 0, 0, time.UTC), v)

	v, err = parseCursor("10000000000000000000", dialect.JSONType{Type: dialect.TypeInteger})
	require.NoError(t, err)
	assert.Equal(t, uint64(10000000000000000000), v)

	v, err = parseCursor("2020-01-01T00:00:00.500000000Z", dialect.JSONType{Type: dialect.TypeString, Format: dialect.FormatDateTime})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 500000000, time.UTC), v)

	_, err = parseCursor("x", dialect.JSONType{Type: dialect.TypeInteger})
	assert.ErrorIs(t, err, srcerrors.ErrInvalidState)
	_, err = parseCursor("x", dialect.JSONType{Type: dialect.TypeNumber})
	assert.ErrorIs(t, err, srcerrors.ErrInvalidState)
}

func TestCompareCursor(t *testing.T) {
	integer := dialect.JSONType{Type: dialect.TypeInteger}
	number := dialect.JSONType{Type: dialect.TypeNumber}
	str := dialect.JSONType{Type: dialect.TypeString}

	assert.Equal(t, 1, compareCursor(int64(10), int64(3), integer))
	assert.Equal(t, -1, compareCursor(uint32(3), int64(10), integer))
	assert.Equal(t, 0, compareCursor(int64(7), int32(7), integer))
	assert.Equal(t, 1, compareCursor(10.5, 9.75, number))
	assert.Equal(t, -1, compareCursor("10", "3", str))
	assert.Equal(t, 1, compareCursor("vash", "picard", str))

	assert.Equal(t, 1, compareCursor(uint64(10000000000000000000), uint64(9999999999999999999), integer))
	assert.Equal(t, -1, compareCursor(int64(-1), uint64(18446744073709551615), integer))
	assert.Equal(t, 1, compareCursor(uint64(10000000000000000000), "9223372036854775807", integer))

	assert.Equal(t, "1.5", cursorString(1.5, number))
	assert.Equal(t, "3", cursorString(int64(3), integer))
	assert.Equal(t, "10000000000000000000", cursorString(uint64(10000000000000000000), integer))
	assert.Equal(t, "2006-10-19", cursorString("2006-10-19", dialect.JSONType{Type: dialect.TypeString, Format: dialect.FormatDate}))
}

func TestCompareCursor_DateTime(t *testing.T) {
	dateTime := dialect.JSONType{Type: dialect.TypeString, Format: dialect.FormatDateTime}

	// RFC 3339 text drops trailing zeros, so "...00.5Z" < "...00Z" as strings.
	assert.Equal(t, 1, compareCursor("2020-01-01T00:00:00.5Z", "2020-01-01T00:00:00Z", dateTime))
	assert.Equal(t, -1, compareCursor("2020-01-01T00:00:00Z", "2020-01-01T00:00:00.5Z", dateTime))
	// 01:00+02:00 is 23:00 UTC the day before.
	assert.Equal(t, -1, compareCursor("2020-01-01T01:00:00+02:00", "2020-01-01T00:00:00Z", dateTime))
	assert.Equal(t, 0, compareCursor("2020-01-01T02:00:00+02:00", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), dateTime))

	assert.Equal(t, "2020-01-01T00:00:00.500000000Z", cursorString("2020-01-01T00:00:00.5Z", dateTime))
	assert.Equal(t, "2019-12-31T23:00:00.000000000Z", cursorString("2020-01-01T01:00:00+02:00", dateTime))
	assert.Equal(t, "2020-01-01T00:00:00.000000000Z", cursorString(time.Date(2020, 1, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600)), dateTime))
}

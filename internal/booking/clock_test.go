package booking_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/campus-booking-backend/internal/booking"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:00", want: "09:00"},
		{in: "23:59", want: "23:59"},
		{in: "00:00", want: "00:00"},
		{in: "13:45:30", want: "13:45"},
		{in: " 08:05 ", want: "08:05"},
		{in: "24:00", wantErr: true},
		{in: "9am", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := booking.ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := booking.ParseDate("2026-01-15")
	require.NoError(t, err)
	assert.Equal(t, booking.Date("2026-01-15"), d)

	_, err = booking.ParseDate("2026-13-01")
	assert.Error(t, err)
	_, err = booking.ParseDate("01/15/2026")
	assert.Error(t, err)
}

func TestTimeOfDay_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		At booking.TimeOfDay `json:"at"`
	}{At: booking.MustTime("07:30")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"07:30"}`, string(data))

	var out struct {
		At booking.TimeOfDay `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"16:15"}`), &out))
	assert.Equal(t, booking.MustTime("16:15"), out.At)

	assert.Error(t, json.Unmarshal([]byte(`{"at":"late"}`), &out))
}

package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubroster/internal/models"
)

func TestCheckFilename(t *testing.T) {
	assert.NoError(t, CheckFilename("members.csv"))
	assert.NoError(t, CheckFilename("MEMBERS.CSV"))
	assert.ErrorIs(t, CheckFilename("members.xlsx"), ErrNotCSV)
	assert.ErrorIs(t, CheckFilename(""), ErrNotCSV)
}

func TestDecodeUTF8(t *testing.T) {
	out, err := Decode([]byte("name,suburb\nJoe,Bäcker\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "Bäcker")
}

func TestDecodeUTF8BOM(t *testing.T) {
	out, err := Decode(append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\nJoe\n")...))
	require.NoError(t, err)
	assert.Equal(t, "name\nJoe\n", out)
}

func TestDecodeUTF16LE(t *testing.T) {
	text := "name\nZoë\n"
	raw := []byte{0xFF, 0xFE}
	for _, r := range text {
		raw = append(raw, byte(r), byte(r>>8))
	}
	out, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, text, out)
}

func TestDecodeWindows1252(t *testing.T) {
	// 0xE9 is é in Windows-1252 and invalid standalone UTF-8.
	out, err := Decode([]byte{'R', 0xE9, 'n', 0xE9})
	require.NoError(t, err)
	assert.Equal(t, "René", out)
}

func TestDecodeExhaustion(t *testing.T) {
	// 0x81 is undefined in Windows-1252 and invalid UTF-8.
	_, err := Decode([]byte{'a', 0x81, 'b'})
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestReadRowsShortRecords(t *testing.T) {
	rows, err := ReadRows("name,suburb,postcode\nJoe,Ipswich\nMia,Gatton,4343\n")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[0]["postcode"])
	assert.Equal(t, "4343", rows[1]["postcode"])
}

func TestParseMemberRowDefaults(t *testing.T) {
	row := map[string]string{
		"name":            "Joe Tester",
		"address":         "1 Main St",
		"suburb":          "Ipswich",
		"postcode":        "4305",
		"membership_type": "Platinum",
		"interest":        "Knitting",
		"email1":          "joe@example.com",
		"email2":          "not-an-email",
		"life_member":     "YES",
		"financial":       "1",
		"receive_sms":     "No",
		"family_members":  "Ann Tester; Ben Tester",
	}
	parsed, err := ParseMemberRow(row, 2)
	require.NoError(t, err)
	m := parsed.Member
	assert.Equal(t, models.TypeFull, m.MembershipType)
	assert.Equal(t, models.InterestBoth, m.Interest)
	require.NotNil(t, m.Email1)
	assert.Equal(t, "joe@example.com", *m.Email1)
	assert.Nil(t, m.Email2)
	assert.True(t, m.LifeMember)
	assert.True(t, m.Financial)
	assert.True(t, m.ReceiveEmails, "opt-in defaults true when absent")
	assert.False(t, m.ReceiveSMS)
	assert.Equal(t, []string{"Ann Tester", "Ben Tester"}, m.FamilyMembers)
}

func TestParseMemberRowBadDate(t *testing.T) {
	row := map[string]string{"name": "X", "expiry_date": "soon"}
	_, err := ParseMemberRow(row, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 5")
}

func TestParseMemberRowCustomNumber(t *testing.T) {
	parsed, err := ParseMemberRow(map[string]string{"name": "X", "member_number": " 10A "}, 2)
	require.NoError(t, err)
	assert.Equal(t, "10A", parsed.Number)
}

func TestParseVehicleRow(t *testing.T) {
	v, err := ParseVehicleRow(map[string]string{
		"member_id":    "member_abc",
		"registration": "ABC123",
		"year":         "1972",
		"entry_date":   "2024-01-10",
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1972, v.Year)
	assert.Equal(t, "Active", v.Status)
	require.NotNil(t, v.EntryDate)
}

func TestParseVehicleRowErrors(t *testing.T) {
	_, err := ParseVehicleRow(map[string]string{"registration": "ABC"}, 3)
	assert.Error(t, err, "missing member_id")

	_, err = ParseVehicleRow(map[string]string{"member_id": "m", "year": "seventy-two"}, 4)
	assert.Error(t, err)
}

func TestCapErrors(t *testing.T) {
	errs := []string{"a", "b", "c"}
	kept, more := CapErrors(errs, 2)
	assert.Equal(t, []string{"a", "b"}, kept)
	assert.Equal(t, 1, more)

	kept, more = CapErrors(errs, 5)
	assert.Equal(t, errs, kept)
	assert.Zero(t, more)
}

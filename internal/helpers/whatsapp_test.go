package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hi there", "Hi%20there"},
		{"!'()*~-_.", "!'()*~-_."},
		{"a+b&c=d", "a%2Bb%26c%3Dd"},
		{"100% sure?", "100%25%20sure%3F"},
		{"Name: Ana\nRoll: 42", "Name%3A%20Ana%0ARoll%3A%2042"},
		{"/path#frag@host,x;y$", "%2Fpath%23frag%40host%2Cx%3By%24"},
		{"रक्त", "%E0%A4%B0%E0%A4%95%E0%A5%8D%E0%A4%A4"},
		{"📸 found", "%F0%9F%93%B8%20found"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodeURIComponent(tt.in), "input %q", tt.in)
	}
}

func TestWhatsAppLink(t *testing.T) {
	tests := []struct {
		number string
		msg    string
		want   string
	}{
		{"917607844279", "Hello", "https://wa.me/917607844279?text=Hello"},
		{"+91 76078-44279", "Hi, I want to report a LOST item.", "https://wa.me/917607844279?text=Hi%2C%20I%20want%20to%20report%20a%20LOST%20item."},
		{"(91) 7607 844 279", "a b", "https://wa.me/917607844279?text=a%20b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WhatsAppLink(tt.number, tt.msg))
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Near gate 2", "Near gate 2"},
		{"line one\nline two", "line one line two"},
		{"windows\r\nbreak", "windows  break"},
		{"[urgent] {asap}", "urgent   asap"},
		{"   ", "N/A"},
		{"\n[]", "N/A"},
		{"", "N/A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), "input %q", tt.in)
	}
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "N/A", OrDefault("  ", "N/A"))
	assert.Equal(t, "BTech", OrDefault("BTech", "N/A"))
}

package langid

import "testing"

func TestCode(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "english",
			text: "These terms of service govern your use of the website and all related services.",
			want: "en",
		},
		{
			name: "hindi",
			text: "ये सेवा की शर्तें वेबसाइट और सभी संबंधित सेवाओं के आपके उपयोग को नियंत्रित करती हैं।",
			want: "hi",
		},
		{
			name: "tamil",
			text: "இந்த சேவை விதிமுறைகள் வலைத்தளம் மற்றும் தொடர்புடைய சேவைகளின் பயன்பாட்டை நிர்வகிக்கின்றன.",
			want: "ta",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Code(tt.text); got != tt.want {
				t.Errorf("Code() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCode_EmptyFallsBackToEnglish(t *testing.T) {
	if got := New().Code(""); got != "en" {
		t.Errorf("Code(\"\") = %q, want en", got)
	}
}

package detector

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/termscan/models"
)

// legalText builds a terms-like body of roughly n characters containing every
// indicator phrase and several legal patterns.
func legalText(n int) string {
	seed := "Terms of Service. These terms and conditions form a user agreement " +
		"governing your use of the service. By continuing you hereby agree to " +
		"these terms of use and our service agreement, legal terms and privacy " +
		"policy. Liability is limited; jurisdiction and governing law apply, " +
		"including dispute resolution and termination clauses. "
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(seed)
	}
	return b.String()[:n]
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse test HTML: %v", err)
	}
	return doc
}

func TestScore_RichLongTextClearsThreshold(t *testing.T) {
	// 4+ distinct indicators, 3+ patterns, length > 5000 must score >= 0.6.
	text := legalText(6000)
	if got := Score(text); got < 0.6 {
		t.Errorf("Score() = %v, want >= 0.6", got)
	}
}

func TestScore_ShortTextPenalized(t *testing.T) {
	text := "terms of service liability " + strings.Repeat("x ", 100)
	score := Score(text)
	// One indicator (0.2) + one pattern (0.1) - short penalty (0.3) ~ 0.
	if score > 0.01 {
		t.Errorf("Score() = %v, want ~0", score)
	}
}

func TestScore_ClampedToOne(t *testing.T) {
	if got := Score(legalText(6000)); got > 1 {
		t.Errorf("Score() = %v, want <= 1", got)
	}
}

func TestDetect_ShortCandidateNotFound(t *testing.T) {
	html := `<html><body><main>` + legalText(150) + `</main></body></html>`
	res := Detect(parseDoc(t, html), "https://example.com/page")
	if res.Found {
		t.Errorf("Detect() found = true for %d-char candidate, want false", 150)
	}
	if res.Location != models.LocationNone {
		t.Errorf("Detect() location = %q, want %q", res.Location, models.LocationNone)
	}
}

func TestDetect_VisibleModal(t *testing.T) {
	html := `<html><head><title>Example</title></head><body>
		<div role="dialog"><p>` + legalText(2000) + `</p></div>
	</body></html>`
	res := Detect(parseDoc(t, html), "https://example.com")
	if !res.Found {
		t.Fatal("Detect() found = false, want true")
	}
	if res.Location != models.LocationModal {
		t.Errorf("Detect() location = %q, want %q", res.Location, models.LocationModal)
	}
	if res.Title != "Example" {
		t.Errorf("Detect() title = %q, want %q", res.Title, "Example")
	}
}

func TestDetect_HiddenModalSkipped(t *testing.T) {
	html := `<html><body>
		<div role="dialog" style="display: none"><p>` + legalText(2000) + `</p></div>
	</body></html>`
	res := Detect(parseDoc(t, html), "https://example.com")
	if res.Found {
		t.Error("Detect() found hidden modal, want skipped")
	}
}

func TestDetect_ModalScriptContentStripped(t *testing.T) {
	filler := strings.Repeat("var x = 1; ", 100)
	html := `<html><body>
		<div class="modal"><script>` + filler + `</script><p>` + legalText(2000) + `</p></div>
	</body></html>`
	res := Detect(parseDoc(t, html), "https://example.com")
	if !res.Found {
		t.Fatal("Detect() found = false, want true")
	}
	if strings.Contains(res.Content, "var x = 1") {
		t.Error("Detect() content contains script text, want it stripped")
	}
}

func TestDetect_PageByTitle(t *testing.T) {
	html := `<html><head><title>Terms of Service - Example</title></head><body>
		<nav>Home About Pricing</nav>
		<p>` + legalText(1200) + `</p>
		<footer>Copyright</footer>
	</body></html>`
	res := Detect(parseDoc(t, html), "https://example.com/legal")
	if !res.Found {
		t.Fatal("Detect() found = false, want true")
	}
	if res.Location != models.LocationPage {
		t.Errorf("Detect() location = %q, want %q", res.Location, models.LocationPage)
	}
	if strings.Contains(res.Content, "Home About Pricing") {
		t.Error("Detect() content contains navigation text, want it stripped")
	}
}

func TestDetect_PageByURL(t *testing.T) {
	html := `<html><head><title>Example</title></head><body>
		<p>` + legalText(1200) + `</p>
	</body></html>`
	res := Detect(parseDoc(t, html), "https://example.com/terms of service")
	if !res.Found {
		t.Fatal("Detect() found = false, want true")
	}
	if res.Location != models.LocationPage {
		t.Errorf("Detect() location = %q, want %q", res.Location, models.LocationPage)
	}
}

func TestDetect_PageTooShortRejected(t *testing.T) {
	html := `<html><head><title>Terms of Service</title></head><body>
		<p>Short terms.</p>
	</body></html>`
	res := Detect(parseDoc(t, html), "https://example.com")
	if res.Found {
		t.Error("Detect() found = true for short terms page, want false")
	}
}

func TestDetect_MainContent(t *testing.T) {
	html := `<html><head><title>Example</title></head><body>
		<div class="terms-content">` + legalText(2000) + `</div>
	</body></html>`
	res := Detect(parseDoc(t, html), "https://example.com")
	if !res.Found {
		t.Fatal("Detect() found = false, want true")
	}
	if res.Location != models.LocationMainContent {
		t.Errorf("Detect() location = %q, want %q", res.Location, models.LocationMainContent)
	}
}

func TestDetect_NothingFound(t *testing.T) {
	html := `<html><head><title>Recipes</title></head><body>
		<main>How to bake bread: mix flour, water, yeast and salt.</main>
	</body></html>`
	res := Detect(parseDoc(t, html), "https://example.com/recipes")
	if res.Found {
		t.Error("Detect() found = true on unrelated page, want false")
	}
	if res.Location != models.LocationNone {
		t.Errorf("Detect() location = %q, want %q", res.Location, models.LocationNone)
	}
}

func TestDetect_NilDocument(t *testing.T) {
	res := Detect(nil, "https://example.com")
	if res.Found {
		t.Error("Detect(nil) found = true, want false")
	}
}

func TestDetect_ContentCapped(t *testing.T) {
	html := `<html><head><title>Terms of Service</title></head><body><p>` +
		legalText(60000) + `</p></body></html>`
	res := Detect(parseDoc(t, html), "https://example.com")
	if !res.Found {
		t.Fatal("Detect() found = false, want true")
	}
	if n := utf8.RuneCountInString(res.Content); n > MaxContentChars {
		t.Errorf("Detect() content length = %d, want <= %d", n, MaxContentChars)
	}
}

func TestDetect_ModalPriorityOverMainContent(t *testing.T) {
	html := `<html><head><title>Example</title></head><body>
		<div class="modal">` + legalText(2000) + `</div>
		<main>` + legalText(2000) + `</main>
	</body></html>`
	res := Detect(parseDoc(t, html), "https://example.com")
	if res.Location != models.LocationModal {
		t.Errorf("Detect() location = %q, want %q (modal strategy runs first)", res.Location, models.LocationModal)
	}
}

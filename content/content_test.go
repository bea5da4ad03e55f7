package content

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var slugCharset = regexp.MustCompile(`^[a-z0-9\x{AC00}-\x{D7A3}-]*$`)

func TestMakeSlug(t *testing.T) {
	tests := []struct {
		title, date, id string
		want            string
	}{
		{"Hello World", "2024-01-15", "abc123", "hello-world-20240115-abc123"},
		{"  청년   월세 지원!  ", "2024-03-02", "x1", "청년-월세-지원-20240302-x1"},
		{"Policy: 2024 (Draft) & Notes", "2024-12-31", "id9", "policy-2024-draft-notes-20241231-id9"},
		{"", "2024-01-01", "id", "-20240101-id"},
		{"!!!", "", "id", "--id"},
	}
	for _, tt := range tests {
		got := MakeSlug(tt.title, tt.date, tt.id)
		assert.Equal(t, tt.want, got, "MakeSlug(%q, %q, %q)", tt.title, tt.date, tt.id)
	}
}

func TestMakeSlugCharsetAndSuffix(t *testing.T) {
	ids := NewIDGenerator(rand.NewChaCha8([32]byte{1}))
	titles := []string{"전기차 보조금 — 개편안?", "TAB\tand\nnewline", "émigré café", "123 ABC"}
	for _, title := range titles {
		id := ids.Generate()
		slug := MakeSlug(title, "2023-10-27T10:00:00Z", id)
		assert.Regexp(t, slugCharset, slug)
		assert.True(t, strings.HasSuffix(slug, "-"+id), "slug %q should end with id %q", slug, id)
		assert.Equal(t, slug, MakeSlug(title, "2023-10-27T10:00:00Z", id))
	}
}

func TestMakeSlugComposesDecomposedHangul(t *testing.T) {
	// U+1112 U+1161 U+11AB is 한 in conjoining jamo.
	assert.Equal(t, "한-2024-id", MakeSlug("\u1112\u1161\u11ab", "2024", "id"))
}

func TestMakeSlugDistinctIDs(t *testing.T) {
	a := MakeSlug("같은 제목", "2024-05-05", "aaa")
	b := MakeSlug("같은 제목", "2024-05-05", "bbb")
	assert.NotEqual(t, a, b)
}

func TestIDGenerator(t *testing.T) {
	g1 := NewIDGenerator(rand.NewChaCha8([32]byte{7}))
	g2 := NewIDGenerator(rand.NewChaCha8([32]byte{7}))

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		id := g1.Generate()
		require.Len(t, id, IDLength)
		require.Regexp(t, `^[0-9a-f]+$`, id)
		assert.Equal(t, id, g2.Generate(), "same seed should give same ids")
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 200)
}

func TestIDGeneratorFallsBackOnExhaustedSource(t *testing.T) {
	g := NewIDGenerator(bytes.NewReader(nil))
	assert.Len(t, g.Generate(), IDLength)
}

func TestAuthorAssignerUsesPool(t *testing.T) {
	a := NewAuthorAssigner(rand.New(rand.NewPCG(1, 2)))
	pool := make(map[string]struct{}, len(AuthorPool))
	for _, n := range AuthorPool {
		pool[n] = struct{}{}
	}
	counts := make(map[string]int)
	for i := 0; i < 1000; i++ {
		name := a.Assign()
		require.NotEmpty(t, name)
		_, ok := pool[name]
		require.True(t, ok, "%q not in pool", name)
		counts[name]++
	}
	assert.Greater(t, len(counts), len(AuthorPool)*3/4)
	for name, n := range counts {
		assert.Less(t, n, 150, "name %q drawn %d times", name, n)
	}
}

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func TestAuthorAssignerDeterministic(t *testing.T) {
	a := NewAuthorAssigner(fixedRand(3))
	assert.Equal(t, AuthorPool[3], a.Assign())
}

func TestResolveContentImage(t *testing.T) {
	var nilStr *string
	empty := ""
	tests := []struct {
		name  string
		field any
		want  string
	}{
		{"nil", nil, PlaceholderCard},
		{"nil pointer", nilStr, PlaceholderCard},
		{"empty string", "", PlaceholderCard},
		{"empty pointer", &empty, PlaceholderCard},
		{"empty slice", []string{}, PlaceholderCard},
		{"empty any slice", []any{}, PlaceholderCard},
		{"slice", []string{"a.jpg", "b.jpg"}, "a.jpg"},
		{"any slice", []any{"a.jpg", 3}, "a.jpg"},
		{"any slice non string", []any{3}, PlaceholderCard},
		{"json text", `["x.jpg"]`, "x.jpg"},
		{"json text many", `["x.jpg","y.jpg"]`, "x.jpg"},
		{"json text empty", `[]`, PlaceholderCard},
		{"broken json", `[not json]`, PlaceholderCard},
		{"plain", "plain.jpg", "plain.jpg"},
		{"bracket only prefix", "[draft].jpg", "[draft].jpg"},
		{"raw message", json.RawMessage(`["r.jpg"]`), "r.jpg"},
		{"bytes", []byte("b.jpg"), PlaceholderCard},
		{"unsupported type", 42, PlaceholderCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveContentImage(tt.field))
		})
	}
}

func TestResolveProfileImage(t *testing.T) {
	var nilStr *string
	dicebear := "https://api.dicebear.com/7.x/initials/svg?seed=kim"

	assert.Equal(t, PlaceholderThumb, ResolveProfileImage(nil))
	assert.Equal(t, PlaceholderThumb, ResolveProfileImage(nilStr))
	assert.Equal(t, PlaceholderThumb, ResolveProfileImage(""))
	assert.Equal(t, dicebear, ResolveProfileImage(dicebear))
	assert.Equal(t, dicebear, ResolveProfileImage(&dicebear))
	assert.Equal(t, "/me.png", ResolveProfileImage("/me.png"))
	// No JSON handling for avatars.
	assert.Equal(t, "[]", ResolveProfileImage("[]"))
	assert.True(t, IsAvatarServiceURL(dicebear))
	assert.False(t, IsAvatarServiceURL("/me.png"))
}

func TestDateFormatter(t *testing.T) {
	en := NewDateFormatter("en-US", time.UTC, nil)
	ko := NewDateFormatter("ko-KR", time.UTC, nil)

	assert.Equal(t, DateMissing, en.Format(""))
	assert.Equal(t, DateMissing, ko.Format("   "))
	assert.Equal(t, DateInvalid, ko.Format("not-a-date"))
	assert.Equal(t, DateInvalid, ko.Format("2023-13-45"))

	got := en.Format("2023-10-27T10:00:00Z")
	assert.Contains(t, got, "2023")
	assert.Contains(t, got, "October")
	assert.Contains(t, got, "27")
	assert.Equal(t, "October 27, 2023 at 10:00 AM", got)

	assert.Equal(t, "2023년 10월 27일 오전 10:00", ko.Format("2023-10-27T10:00:00Z"))
	assert.Equal(t, "2023년 10월 27일 오후 07:05", ko.Format("2023-10-27T19:05:00Z"))
	assert.Equal(t, "2024년 1월 5일 오전 12:00", ko.Format("2024-01-05"))
}

func TestDateFormatterTimeZone(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	ko := NewDateFormatter("ko", seoul, nil)
	assert.Equal(t, "2023년 10월 27일 오후 07:00", ko.Format("2023-10-27T10:00:00Z"))
	// No offset in the input: read in the formatter's zone.
	assert.Equal(t, "2023년 10월 27일 오전 08:30", ko.Format("2023-10-27 08:30:00"))
}

func TestDateFormatterUnknownLocaleFallsBackToKorean(t *testing.T) {
	f := NewDateFormatter("zz-!!", time.UTC, nil)
	assert.Equal(t, "2023년 10월 27일 오전 10:00", f.Format("2023-10-27T10:00:00Z"))
}

func TestDateFormatterRenderFailure(t *testing.T) {
	var f DateFormatter // no zone configured
	assert.Equal(t, DateError, f.Format("2023-10-27T10:00:00Z"))
}

func TestDateFormatterLogsRenderFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := DateFormatter{log: zap.New(core)}
	assert.Equal(t, DateError, f.Format("2023-10-27T10:00:00Z"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "format display date", entries[0].Message)
	assert.Equal(t, "2023-10-27T10:00:00Z", entries[0].ContextMap()["timestamp"])
}

func TestFabricator(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewPCG(3, 4))
	f := NewFabricator(NewIDGenerator(rand.NewChaCha8([32]byte{9})), NewAuthorAssigner(rng), rng, func() time.Time { return now })

	records := f.Records(50)
	require.Len(t, records, 50)
	slugs := make(map[string]struct{})
	for _, r := range records {
		require.Len(t, r.ID, IDLength)
		assert.True(t, strings.HasSuffix(r.Slug, "-"+r.ID))
		assert.Regexp(t, slugCharset, r.Slug)
		assert.NotEmpty(t, r.Author)
		assert.Contains(t, Categories, r.Category)

		d, err := time.Parse(time.RFC3339, r.DateISO)
		require.NoError(t, err)
		assert.False(t, d.After(now))
		assert.True(t, d.After(now.AddDate(0, 0, -31)))

		img := ResolveContentImage(r.Image)
		assert.NotEmpty(t, img)
		if r.Image == nil {
			assert.Equal(t, PlaceholderCard, img)
		} else {
			assert.True(t, strings.HasPrefix(img, "https://picsum.photos/seed/"+r.ID), img)
		}
		slugs[r.Slug] = struct{}{}
	}
	assert.Len(t, slugs, 50)
}

package content

import (
	"fmt"
	"net/url"
	"time"
)

// Record is an article as it arrives from a source, before normalization.
// Image may be nil, a URL string, a []string, or a JSON array encoded as
// text. Records are treated as immutable.
type Record struct {
	ID           string
	Slug         string
	Title        string
	DateISO      string
	Category     string
	Summary      string
	Body         string
	Image        any
	Author       string
	AuthorAvatar string
}

// Categories used for fabricated records.
var Categories = []string{"경제", "복지", "교육", "환경", "국토교통", "행정"}

var topics = []string{
	"청년 월세 지원 확대 시행",
	"소상공인 전기요금 감면 연장",
	"기초연금 수급 기준 조정 안내",
	"전기차 구매 보조금 개편",
	"초등 늘봄학교 전국 확대",
	"공공임대주택 입주 자격 완화",
	"탄소중립 실천 포인트 제도 개선",
	"고용보험 적용 대상 확대",
	"국가장학금 소득 구간 변경",
	"지역화폐 발행 지원 계획 발표",
	"K-패스 교통비 환급 기준 안내",
	"출산 가구 주택 특별공급 신설",
}

// Fabricator builds placeholder records for development and demo sites.
type Fabricator struct {
	ids     *IDGenerator
	authors *AuthorAssigner
	rng     Rand
	now     func() time.Time
}

// NewFabricator wires the id generator and author assigner together.
// rng also drives topic, category, date and image shape choices.
func NewFabricator(ids *IDGenerator, authors *AuthorAssigner, rng Rand, now func() time.Time) *Fabricator {
	if ids == nil {
		ids = NewIDGenerator(nil)
	}
	if authors == nil {
		authors = NewAuthorAssigner(rng)
	}
	if rng == nil {
		rng = globalRand{}
	}
	if now == nil {
		now = time.Now
	}
	return &Fabricator{ids: ids, authors: authors, rng: rng, now: now}
}

// Records returns n fabricated records.
func (f *Fabricator) Records(n int) []Record {
	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.Record())
	}
	return out
}

// Record returns one fabricated record with id, slug and author assigned.
func (f *Fabricator) Record() Record {
	id := f.ids.Generate()
	title := topics[f.rng.IntN(len(topics))]
	published := f.now().
		Add(-time.Duration(f.rng.IntN(30)) * 24 * time.Hour).
		Add(-time.Duration(f.rng.IntN(24)) * time.Hour).
		Truncate(time.Minute)
	author := f.authors.Assign()

	r := Record{
		ID:       id,
		Slug:     MakeSlug(title, published.Format(time.DateOnly), id),
		Title:    title,
		DateISO:  published.Format(time.RFC3339),
		Category: Categories[f.rng.IntN(len(Categories))],
		Summary:  title + "에 관한 주요 내용을 정리했습니다.",
		Body:     fmt.Sprintf("## 개요\n\n%s 관련 세부 내용입니다.\n\n- 대상: 전 국민\n- 시행일: %s\n", title, published.Format(time.DateOnly)),
		Author:   author,
	}

	img := "https://picsum.photos/seed/" + id + "/800/450"
	switch f.rng.IntN(4) {
	case 0:
		r.Image = nil
	case 1:
		r.Image = img
	case 2:
		r.Image = []string{img, "https://picsum.photos/seed/" + id + "-2/800/450"}
	case 3:
		r.Image = `["` + img + `"]`
	}
	if f.rng.IntN(2) == 0 {
		r.AuthorAvatar = "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(author)
	}
	return r
}

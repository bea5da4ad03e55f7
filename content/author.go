package content

import "math/rand/v2"

// Rand is the randomness AuthorAssigner draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// AuthorPool is the fixed set of display names used for articles without a
// known author.
var AuthorPool = []string{
	"김민준", "이서연", "박지호", "최수아", "정도윤",
	"강하은", "조예준", "윤지유", "장시우", "임서윤",
	"한주원", "오하린", "서건우", "신지민", "권유진",
	"황현우", "안채원", "송민서", "류준서", "전수빈",
	"홍지훈", "고은서", "문예린", "양태윤", "손다은",
	"배승현", "백소율", "허민재", "유나연", "남궁현",
}

// AuthorAssigner picks display names uniformly from AuthorPool.
type AuthorAssigner struct {
	rng Rand
}

// NewAuthorAssigner returns an assigner using rng, or the process-wide
// source when rng is nil.
func NewAuthorAssigner(rng Rand) *AuthorAssigner {
	if rng == nil {
		rng = globalRand{}
	}
	return &AuthorAssigner{rng: rng}
}

// Assign returns a name from AuthorPool.
func (a *AuthorAssigner) Assign() string {
	return AuthorPool[a.rng.IntN(len(AuthorPool))]
}

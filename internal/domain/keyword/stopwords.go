package keyword

// stopwords are common English words with no topical signal.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "nor": {},
	"yet": {}, "so": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"of": {}, "with": {}, "by": {}, "from": {}, "up": {}, "down": {}, "into": {},
	"through": {}, "during": {}, "before": {}, "after": {}, "above": {},
	"below": {}, "between": {}, "among": {}, "within": {}, "without": {},
	"against": {}, "toward": {}, "towards": {}, "upon": {}, "across": {},
	"behind": {}, "beneath": {}, "beside": {}, "beyond": {}, "inside": {},
	"outside": {}, "under": {}, "over": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {},
	"had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {},
	"could": {}, "should": {}, "may": {}, "might": {}, "can": {}, "shall": {},
	"must": {}, "ought": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"me": {}, "him": {}, "her": {}, "us": {}, "them": {}, "my": {}, "your": {},
	"his": {}, "its": {}, "our": {}, "their": {}, "mine": {}, "yours": {},
	"hers": {}, "ours": {}, "theirs": {}, "myself": {}, "yourself": {},
	"himself": {}, "herself": {}, "itself": {}, "ourselves": {}, "yourselves": {},
	"themselves": {}, "very": {}, "really": {}, "quite": {}, "rather": {},
	"just": {}, "only": {}, "even": {}, "still": {}, "also": {}, "too": {},
	"as": {}, "well": {}, "such": {}, "much": {}, "many": {}, "few": {},
	"little": {}, "more": {}, "most": {}, "less": {}, "least": {}, "some": {},
	"any": {}, "all": {}, "both": {}, "each": {}, "every": {}, "either": {},
	"neither": {}, "other": {}, "another": {}, "same": {}, "different": {},
	"similar": {}, "like": {}, "unlike": {}, "now": {}, "then": {}, "today": {},
	"yesterday": {}, "tomorrow": {}, "always": {}, "never": {}, "often": {},
	"sometimes": {}, "usually": {}, "rarely": {}, "ever": {}, "already": {},
	"soon": {}, "later": {}, "early": {}, "late": {}, "here": {}, "there": {},
	"where": {}, "everywhere": {}, "anywhere": {}, "nowhere": {}, "somewhere": {},
	"away": {}, "back": {}, "forward": {}, "backward": {}, "upward": {},
	"downward": {}, "home": {}, "abroad": {}, "good": {}, "bad": {}, "big": {},
	"small": {}, "large": {}, "high": {}, "low": {}, "long": {}, "short": {},
	"wide": {}, "narrow": {}, "thick": {}, "thin": {}, "heavy": {}, "light": {},
	"strong": {}, "weak": {}, "hard": {}, "soft": {}, "easy": {}, "difficult": {},
	"simple": {}, "complex": {}, "new": {}, "old": {}, "young": {}, "fresh": {},
	"stale": {}, "clean": {}, "dirty": {}, "hot": {}, "cold": {}, "warm": {},
	"cool": {}, "one": {}, "two": {}, "three": {}, "first": {}, "second": {},
	"third": {}, "last": {}, "next": {}, "previous": {}, "current": {},
	"recent": {}, "modern": {}, "ancient": {}, "use": {}, "using": {}, "used": {},
	"get": {}, "gets": {}, "getting": {}, "got": {}, "gotten": {}, "make": {},
	"makes": {}, "making": {}, "made": {}, "take": {}, "takes": {}, "taking": {},
	"took": {}, "taken": {}, "go": {}, "goes": {}, "going": {}, "went": {},
	"gone": {}, "come": {}, "comes": {}, "coming": {}, "came": {}, "see": {},
	"sees": {}, "seeing": {}, "saw": {}, "seen": {}, "know": {}, "knows": {},
	"knowing": {}, "knew": {}, "known": {}, "um": {}, "uh": {}, "basically": {},
	"actually": {}, "literally": {}, "honestly": {}, "frankly": {},
	"obviously": {}, "clearly": {}, "naturally": {}, "certainly": {},
	"definitely": {}, "absolutely": {}, "completely": {}, "totally": {},
	"entirely": {}, "wholly": {}, "fully": {}, "partly": {}, "partially": {},
	"mostly": {}, "mainly": {}, "primarily": {}, "chiefly": {}, "largely": {},
	"generally": {}, "typically": {}, "normally": {}, "commonly": {},
	"frequently": {}, "occasionally": {}, "seldom": {}, "hardly": {},
	"scarcely": {}, "barely": {}, "almost": {}, "nearly": {}, "approximately": {},
	"roughly": {}, "about": {}, "around": {}, "exactly": {}, "precisely": {},
	"accurately": {}, "correctly": {}, "properly": {}, "appropriately": {},
	"suitably": {}, "adequately": {}, "sufficiently": {}, "enough": {},
	"additionally": {}, "furthermore": {}, "moreover": {}, "besides": {},
	"likewise": {}, "similarly": {}, "equally": {},
}

// IsStopword reports whether w (lowercase) is ignored by Extract.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

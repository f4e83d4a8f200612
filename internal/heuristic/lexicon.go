package heuristic

// Fixed lexicons for offline sentiment scanning. Word sets, matched against
// lowercased journal text.

var positiveWords = map[string]bool{
	"happy": true, "joy": true, "joyful": true, "glad": true, "great": true,
	"good": true, "wonderful": true, "amazing": true, "excellent": true,
	"love": true, "loved": true, "excited": true, "exciting": true,
	"grateful": true, "thankful": true, "proud": true, "calm": true,
	"peaceful": true, "relaxed": true, "hopeful": true, "optimistic": true,
	"energized": true, "motivated": true, "accomplished": true, "confident": true,
	"fun": true, "laughed": true, "smile": true, "smiled": true, "better": true,
	"progress": true, "success": true, "successful": true, "refreshed": true,
}

var negativeWords = map[string]bool{
	"sad": true, "unhappy": true, "depressed": true, "miserable": true,
	"angry": true, "furious": true, "annoyed": true, "frustrated": true,
	"frustrating": true, "upset": true, "terrible": true, "awful": true,
	"horrible": true, "bad": true, "worse": true, "worst": true,
	"lonely": true, "alone": true, "tired": true, "exhausted": true,
	"drained": true, "hopeless": true, "worthless": true, "guilty": true,
	"afraid": true, "scared": true, "cried": true, "crying": true,
	"hurt": true, "pain": true, "painful": true, "failed": true, "failure": true,
}

var stressWords = map[string]bool{
	"stress": true, "stressed": true, "stressful": true, "anxious": true,
	"anxiety": true, "worried": true, "worry": true, "worrying": true,
	"overwhelmed": true, "overwhelming": true, "pressure": true,
	"deadline": true, "deadlines": true, "panic": true, "panicked": true,
	"burnout": true, "burnt": true, "insomnia": true, "sleepless": true,
	"tense": true, "nervous": true, "restless": true, "racing": true,
}

package prompt

import "strings"

var (
	urgencyKeywords = normalizeAll(
		"بسرعه", "بسرعة", "ضروري", "مستعجل", "مستعجله", "حالا", "النهارده", "urgent", "asap", "quickly",
	)
	frustrationKeywords = normalizeAll(
		"زهقت", "زعلان", "زعلانه", "مش معقول", "حرام عليكم", "محدش بيرد", "وحش", "angry", "annoyed", "ridiculous",
	)
)

// DetectMood returns a short mood label such as "frustrated, urgent", or "" when
// nothing stands out.
func DetectMood(message string) string {
	text := padded(message)
	labels := make([]string, 0, 2)
	if matchesAny(text, frustrationKeywords) || strings.Contains(message, "!!") || strings.Contains(message, "؟؟") {
		labels = append(labels, "frustrated")
	}
	if matchesAny(text, urgencyKeywords) {
		labels = append(labels, "urgent")
	}
	return strings.Join(labels, ", ")
}

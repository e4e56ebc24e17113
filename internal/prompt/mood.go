package prompt

import (
	"fmt"
	"strings"

	"github.com/kapu/moodtunes-go/internal/domain"
)

// MoodPromptVars holds variables for the mood analysis prompt
type MoodPromptVars struct {
	MoodDescription   string
	Alignment         domain.Alignment
	Preferences       domain.PreferenceSet
	ExcludedTracks    []domain.TrackRequest
	TrackCount        int
	ExcludedFranchise string
	Timestamp         string
}

// BuildMoodAnalysisPrompt builds the single prompt sent to the generation
// model: analysis instructions, the alignment directive, strict preference
// constraints, the exclusion list, and the required JSON response format.
func BuildMoodAnalysisPrompt(vars MoodPromptVars) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are an expert music therapist and emotional analyst. Analyze the following mood description and provide appropriate music recommendations:

"%s"

Based on this description:
1. Analyze the user's emotional state in detail (2-3 sentences)
2. Identify the primary mood in a single word
3. Identify any secondary mood in a single word (if present, otherwise set to null)
4. Rate the emotional intensity on a scale of 1-10
5. Recommend exactly %d specific music tracks (with artist names) that would be therapeutic for this emotional state`,
		vars.MoodDescription, vars.TrackCount)

	if vars.Alignment == domain.AlignmentContrast {
		b.WriteString(`
IMPORTANT MOOD ALIGNMENT INSTRUCTION: The user has requested music that CONTRASTS with their current mood. If they are feeling negative emotions (sad, anxious, depressed, angry, etc.), recommend uplifting, energetic, and positive music. If they are feeling very energetic or overstimulated, recommend calming and soothing music. The goal is to provide music that helps shift their emotional state in a positive direction.`)
	} else {
		b.WriteString(`
IMPORTANT MOOD ALIGNMENT INSTRUCTION: The user has requested music that MATCHES their current mood. Recommend music that resonates with and validates their emotional state.`)
	}

	fmt.Fprintf(&b, `
IMPORTANT GUIDELINES FOR MUSIC RECOMMENDATIONS:
- Focus on famous, popular, and well-known songs from 1990s to present day
- Include a mix of recent hits (last 5 years) and classic hits (1990s-2010s)
- For calm/relaxed moods, you may include well-known piano pieces like those by Yiruma or Ludovico Einaudi
- Prioritize songs that have been in the Billboard charts or have high streaming numbers
- Avoid obscure or unknown artists unless specifically requested
- Each recommendation should be by a different artist if possible
- DO NOT add "Collective", "& Friends", or "Band" to artist names
- Keep artist names simple and accurate (e.g., use "Hatsune Miku" not "Hatsune Miku Collective")
- Use the original artist name without additions (e.g., use "Fujii Kaze" not "Fujii Kaze & Friends")
- Current timestamp: %s`, vars.Timestamp)

	b.WriteString(buildPreferencesBlock(vars.Preferences, vars.ExcludedFranchise))
	b.WriteString(buildExclusionsBlock(vars.ExcludedTracks))

	b.WriteString(`

6. Suggest 3-5 music genres that match this emotional state
7. Describe the overall mood of the playlist in a phrase
8. Recommend a tempo (slow, medium, or upbeat)

IMPORTANT: Respond ONLY with a valid JSON object in the following format with no additional text:
{
"narrative": "detailed analysis of the mood",
"primaryMood": "single word primary mood",
"secondaryMood": "single word secondary mood or null if none",
"intensity": number between 1-10,
"recommendation": {
  "genres": ["genre1", "genre2", "genre3"],
  "tracks": [
    {
      "title": "track title 1",
      "artist": "artist name 1"
    },
    {
      "title": "track title 2",
      "artist": "artist name 2"
    }
  ],
  "playlistMood": "descriptive phrase for the playlist mood",
  "tempo": "slow/medium/upbeat"
}
}`)

	return b.String()
}

// buildPreferencesBlock renders the STRICT PREFERENCES section. Dimensions
// carrying the "any" sentinel contribute no constraint line.
func buildPreferencesBlock(prefs domain.PreferenceSet, excludedFranchise string) string {
	var b strings.Builder

	b.WriteString("\n\nSTRICT USER PREFERENCES - YOU MUST FOLLOW THESE EXACTLY:")

	hasConstraints := false

	if styles := prefs.ActiveStyles(); len(styles) > 0 {
		fmt.Fprintf(&b, "\n- ONLY recommend music in these styles/genres: %s", strings.Join(styles, ", "))
		hasConstraints = true
	}
	if languages := prefs.ActiveLanguages(); len(languages) > 0 {
		fmt.Fprintf(&b, "\n- ONLY recommend songs in these languages: %s", strings.Join(languages, ", "))
		hasConstraints = true
	}
	if sources := prefs.ActiveSources(); len(sources) > 0 {
		fmt.Fprintf(&b, "\n- ONLY recommend songs from these sources: %s", strings.Join(sources, ", "))
		hasConstraints = true
	}

	if excludedFranchise != "" {
		fmt.Fprintf(&b, "\n- DO NOT recommend any tracks from %s anime or soundtrack", excludedFranchise)
	}

	if hasConstraints {
		b.WriteString("\n\nIMPORTANT: Do NOT recommend ANY tracks that don't match ALL of the above criteria. If you cannot find enough tracks that match all criteria, recommend fewer tracks rather than including tracks that don't match.")
	}

	return b.String()
}

// buildExclusionsBlock renders the CRITICAL block listing every previously
// surfaced track. Empty exclusion lists produce nothing.
func buildExclusionsBlock(excluded []domain.TrackRequest) string {
	if len(excluded) == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n\nCRITICAL INSTRUCTION: You MUST NOT recommend any of these tracks that were already recommended. Check each of your recommendations against this list and ensure there are NO DUPLICATES:")
	for _, track := range excluded {
		fmt.Fprintf(&b, "\n- %q by %s", track.Title, track.Artist)
	}
	b.WriteString("\n\nEven if the tracks are slightly different in spelling or formatting, if they refer to the same song, DO NOT recommend it again. Recommend completely different tracks instead.")

	return b.String()
}

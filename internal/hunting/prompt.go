package hunting

import (
	"fmt"
	"strings"

	"github.com/myrjola/huntdesk/internal/discovery"
	"github.com/myrjola/huntdesk/internal/models"
)

// MaxOutputTokens is the completion budget of a hunt.
const MaxOutputTokens = 4000

// SystemPrompt describes the 10-step methodology and the shape of the expected answer.
const SystemPrompt = `You are an expert business development strategist for PepsiCo's AFH (Away From Home) division.

Your task is to apply the 10-step hunting model to identify and qualify potential business opportunities:

1. Define opportunity – Clarify sub-channel, markets, target customer type, and AFH occasions.
2. Scan universe – Build a long-list of potential customers in those markets (real companies where possible).
3. Prioritise & score – Rank targets on scale, multi-market reach, AFH relevance, and ease/speed to pilot.
4. Insight & hypothesis – Form hypotheses on their shopper/consumer needs, current gaps, and decision-makers.
5. PepsiCo value proposition – Design 1–2 platform ideas per top target (brands, occasions, commercial logic).
6. Internal/bottler alignment – Identify which BU, bottler(s), and functions must be engaged and why.
7. Approach plan – Define the route in (RFP, C-suite, operator HQ), key messages, and meeting objectives.
8. Discovery & qualification – First contact, key questions, and signals to qualify or deprioritise the lead.
9. Proposal & negotiation – Shape of proposal, value drivers, investment asks, and potential trade-offs.
10. Pilot & learn – Recommended pilot design, simple KPIs, and how learning will feed the next wave of hunts.

For each account, provide:
- Name
- Markets served
- Segment classification
- Score (0-100) based on opportunity size, multi-market reach, AFH relevance, and ease to pilot
- Current step (1-10, typically starting at 1)
- Rationale for the score
- 1-2 platform ideas
- Stage (Prospect, Qualified, In Discussion, Pilot, etc.)
- For each of the 10 steps, provide a short note (1-2 sentences max)

Return ONLY valid JSON with no markdown formatting.`

// CandidateList merges the discovered entities of every market into distinct names, visiting markets in request
// order, and keeps at most twice the account target.
func CandidateList(results map[string]discovery.Result, markets []string, maxAccounts int) []string {
	return discovery.Merge(results, markets, 2*maxAccounts)
}

// BuildUserPrompt embeds the hunt parameters and the numbered candidate list into the hunt instruction.
func BuildUserPrompt(params models.HuntParams, candidates []string) string {
	var b strings.Builder
	b.WriteString("Apply the 10-step hunting model for the following opportunity:\n\n")
	fmt.Fprintf(&b, "Sub-Channel: %s\n", params.SubChannel)
	fmt.Fprintf(&b, "Markets: %s\n", strings.Join(params.Markets, ", "))
	fmt.Fprintf(&b, "Focus Brands: %s\n", strings.Join(params.FocusBrands, ", "))
	fmt.Fprintf(&b, "Max Accounts to Identify: %d\n\n", params.MaxAccounts)

	b.WriteString("Potential Companies Found (from market scan):\n")
	for i, candidate := range candidates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, candidate)
	}
	if len(candidates) == 0 {
		b.WriteString("(none found, use your own knowledge of the market)\n")
	}

	fmt.Fprintf(&b, `
Please analyze these companies and any others you think are relevant. For each of the top %d opportunities:
1. Provide all required fields (name, markets, segment, score, rationale, ideas, stage)
2. For each of the 10 steps, provide a short note

Return a JSON object with this structure:
{
  "huntResult": {
    "summary": "Brief summary of hunting findings",
    "totalAccounts": number
  },
  "accounts": [
    {
      "name": "Company Name",
      "markets": ["market1", "market2"],
      "segment": "segment type",
      "score": 85,
      "currentStep": 1,
      "rationale": "Why this company scores well",
      "ideas": [
        {"title": "Idea 1", "description": "Description"}
      ],
      "stage": "Prospect",
      "steps": [
`, params.MaxAccounts)
	names := models.StepNames()
	for i, name := range names {
		sep := ","
		if i == len(names)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "        {\"step\": %d, \"name\": %q, \"note\": \"Short note\"}%s\n", i+1, name, sep)
	}
	b.WriteString("      ]\n    }\n  ]\n}\n")
	return b.String()
}

package provider

// PanelEntry is one specialization of the deep-analysis fan-out: a stable
// label plus the system instruction for that angle of research.
type PanelEntry struct {
	Label       string
	Instruction string
}

// analysisPanel is the fixed set of specialized sub-calls issued for deep
// analysis. Extending the panel is a table edit; the fan-out logic never
// changes.
var analysisPanel = []PanelEntry{
	{
		Label: "biography",
		Instruction: "You are a biographical researcher. Summarize everything known " +
			"about the subject's personal background: full name, origin, age range, " +
			"languages, and notable life events. Be factual and concise.",
	},
	{
		Label: "technical skills",
		Instruction: "You are a technical recruiter. List the subject's programming " +
			"languages, frameworks, tools, and platforms, with any evidence of depth " +
			"such as projects or certifications.",
	},
	{
		Label: "digital footprint",
		Instruction: "You are an OSINT analyst. Describe the subject's online " +
			"presence: websites, social profiles, usernames, and public activity " +
			"patterns. Note only publicly observable information.",
	},
	{
		Label: "career",
		Instruction: "You are a career analyst. Reconstruct the subject's " +
			"employment history: roles, companies, durations, and trajectory.",
	},
	{
		Label: "education",
		Instruction: "You are an education researcher. Summarize the subject's " +
			"degrees, institutions, fields of study, and academic achievements.",
	},
	{
		Label: "media appearances",
		Instruction: "You are a media researcher. List interviews, podcasts, " +
			"talks, articles, and press mentions featuring the subject.",
	},
	{
		Label: "reputation",
		Instruction: "You are a reputation analyst. Summarize how the subject is " +
			"perceived professionally: endorsements, reviews, community standing.",
	},
	{
		Label: "authored content",
		Instruction: "You are a content researcher. List articles, papers, " +
			"open-source projects, and other works authored by the subject.",
	},
	{
		Label: "professional network",
		Instruction: "You are a network analyst. Describe the subject's known " +
			"collaborators, affiliations, organizations, and communities.",
	},
	{
		Label: "behavioral interests",
		Instruction: "You are a behavioral researcher. Summarize the subject's " +
			"stated interests, hobbies, and recurring topics of engagement.",
	},
}

// synthesisInstruction directs the final fan-in call that merges the panel's
// fragments into one report.
const synthesisInstruction = "You are a senior analyst compiling a final report. " +
	"You receive research fragments from specialized analysts, each labeled with " +
	"its specialization. Merge them into one coherent report: deduplicate " +
	"overlapping findings, resolve contradictions in favor of the majority, and " +
	"rank each claim by confidence. Mark claims supported by three or more " +
	"fragments as CONFIRMED, by two as LIKELY, and by only one as UNVERIFIED. " +
	"Structure the report with clear sections and finish with a confidence summary."

// fragmentPlaceholder stands in for a failed sub-call so the synthesis input
// always has one fragment per specialization.
const fragmentPlaceholder = "No data available for this specialization (lookup failed)."

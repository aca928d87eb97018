package promptbuilder

// RegisterDefaults installs the built-in presets used when a named preset
// isn't present in the loaded prompt directory — keeps the pipeline
// functional on a fresh checkout before an operator supplies prompts/*.yaml.
func (b *Builder) RegisterDefaults() {
	for name, preset := range defaultPresets {
		if !b.Has(name) {
			b.Register(name, preset)
		}
	}
}

var defaultPresets = map[string]Preset{
	"rag": {
		SystemPrompt: "You are a security operations assistant. Answer the analyst's question using only the provided context. " +
			"If the context is insufficient, say so plainly rather than guessing. Be concise and factual.",
		UserPromptTemplate: "Context:\n{context}\n\nQuestion: {query}",
	},
	"ioc_enrichment": {
		SystemPrompt: "You are a threat intelligence analyst. Given raw analyzer reports for an indicator of compromise, " +
			"produce a clear risk assessment and concrete next steps for a SOC analyst.",
		UserPromptTemplate: "Indicator: {ioc_value}\nRisk level: {risk_level}\n\nAnalyzer findings:\n{findings}\n\n" +
			"Organization guidance:\n{context}\n\nProvide an analysis and recommended actions.",
	},
	"ioc_description_summary": {
		SystemPrompt: "Summarize the following threat intelligence analysis in no more than 1000 characters, " +
			"preserving the verdict and the most important action items.",
		UserPromptTemplate: "{analysis}",
	},
	"alert_summary": {
		SystemPrompt: "You are a SOC analyst assistant. Given a group of related alerts, explain the likely cause and " +
			"recommend a containment or investigation action.",
		UserPromptTemplate: "Group: {group_key}\nSeverity: {severity}\nPattern: {pattern}\nSample log lines:\n{samples}\n\n" +
			"Relevant guidance:\n{context}",
	},
	"alert_ai_analysis": {
		SystemPrompt: "You are a SOC analyst assistant. Analyze this alert digest and give a brief, actionable recommendation.",
		UserPromptTemplate: "Risk score: {risk_score}/100\nTotal alerts: {total_alerts}\n\n" +
			"Main attack patterns:\n{attack_patterns}\n\n" +
			"Provide:\n1. A severity assessment (2-3 sentences)\n" +
			"2. The top 3 recommended actions, as short bullet points\n" +
			"3. Any MITRE ATT&CK techniques worth investigating\n\n" +
			"Keep the response under 250 words, specific and actionable.",
	},
	"context_entity_extraction": {
		SystemPrompt: "Extract domain systems, IP addresses, and device identifiers mentioned in the conversation below. " +
			"Return them as a short comma-separated list with no other text.",
		UserPromptTemplate: "Conversation:\n{history}",
	},
}

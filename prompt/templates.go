package prompt

import (
	"github.com/tmc/langchaingo/prompts"
)

const (
	// VaguePrompt is the zero-shot prompt that leaves everything to the model.
	VaguePrompt = "write a policy"

	// SpecificPrompt is the zero-shot prompt that states audience, length and requirements.
	SpecificPrompt = "Write a 200-word data privacy policy for European customers covering GDPR requirements, data retention periods of 30 days, and user rights to deletion and portability"

	// DirectPrompt is the unstructured counterpart of the chain-of-thought prompt.
	DirectPrompt = "Fix our data retention policy to comply with GDPR."
)

// RefundPolicyExample is the single example shown by the one-shot template.
const RefundPolicyExample = `REFUND POLICY
1. Eligibility: Within 30 days of purchase
2. Conditions: Product unused and in original packaging
3. Process: Submit request via support@company.com
4. Timeline: Refund processed within 5-7 business days
5. Exceptions: Digital products and custom orders non-refundable`

// GDPRSteps are the reasoning steps for the data retention problem.
const GDPRSteps = `Step 1: Review current GDPR requirements for data retention
Step 2: Identify gaps in our existing policy
Step 3: Research industry best practices
Step 4: Draft specific recommendations
Step 5: Create implementation timeline`

// GDPRProblem is the problem the chain-of-thought template is applied to.
const GDPRProblem = "Fix our data retention policy to comply with GDPR"

// Explain is a reusable template over topic and style.
func Explain() prompts.PromptTemplate {
	return prompts.NewPromptTemplate("Explain {{.topic}} in {{.style}}", []string{"topic", "style"})
}

// OneShot shows one formatted example and asks for another policy in the same format.
func OneShot() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(`Here's an example of our policy format:

{{.example}}

Now write a {{.policy_type}} policy following this EXACT format with numbered sections:`,
		[]string{"example", "policy_type"})
}

// SupportExamples are the customer-support pairs used by FewShot.
var SupportExamples = []map[string]string{
	{
		"input":  "refund request",
		"output": "I understand you'd like a refund. Let me check your order details. Our refund policy allows returns within 30 days. I'll process this for you right away.",
	},
	{
		"input":  "shipping delay",
		"output": "I apologize for the shipping delay. Let me track your package immediately. I see it's currently in transit and should arrive within 2 days. I'll apply a shipping credit to your account.",
	},
	{
		"input":  "password reset",
		"output": "I'll help you reset your password. For security, I've sent a reset link to your registered email. The link expires in 1 hour. Please check your spam folder if you don't see it.",
	},
}

// FewShot returns a customer-support prompt that teaches tone through
// examples. The only input variable is "input".
func FewShot(examples []map[string]string) *prompts.FewShotPrompt {
	return &prompts.FewShotPrompt{
		ExamplePrompt: prompts.NewPromptTemplate(
			"Customer Issue: {{.input}}\nSupport Response: {{.output}}",
			[]string{"input", "output"},
		),
		Examples:         examples,
		Prefix:           "You are a helpful customer support agent. Here are examples of how to respond:",
		Suffix:           "Customer Issue: {{.input}}\nSupport Response:",
		ExampleSeparator: "\n\n",
		TemplateFormat:   prompts.TemplateFormatGoTemplate,
	}
}

// ChainOfThought asks the model to work through the given steps in order.
func ChainOfThought() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(`To solve this problem, think through it step-by-step:

{{.steps}}

Problem: {{.problem}}

Now, let's work through each step systematically:`,
		[]string{"steps", "problem"})
}

// BenefitsList asks for three comma-separated benefits of a technology.
func BenefitsList() prompts.PromptTemplate {
	return prompts.NewPromptTemplate("List 3 benefits of {{.technology}} (comma-separated):", []string{"technology"})
}

// UseCaseList asks for three comma-separated use cases of a technology.
func UseCaseList() prompts.PromptTemplate {
	return prompts.NewPromptTemplate("List 3 use cases for {{.technology}} (comma-separated):", []string{"technology"})
}

// Analysis asks for a short pros and cons summary.
func Analysis() prompts.PromptTemplate {
	return prompts.NewPromptTemplate("Analyze {{.technology}} and provide pros and cons in 2-3 sentences", []string{"technology"})
}

// TechnologyProfile asks for a structured description. The format
// instructions of the parser are appended to the prompt.
func TechnologyProfile(parser *StructuredParser) prompts.PromptTemplate {
	t := prompts.NewPromptTemplate(`Analyze {{.technology}} and respond with JSON containing:
- benefits: 2 benefits separated by commas
- complexity: low/medium/high
- use_case: one main use case
Technology: {{.technology}}
{{.format_instructions}}`, []string{"technology"})
	t.PartialVariables = map[string]any{"format_instructions": parser.GetFormatInstructions()}
	return t
}

package ai

import "fmt"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const systemPrompt = "You are an information extraction engine. Return ONLY a JSON object matching the given JSON Schema. " +
	"No markdown. No extra keys. Never invent facts."

const userPromptHeader = "Task: Determine whether this email is part of a job application process and extract structured fields.\n\n" +
	"IMPORTANT NEGATIVE RULES (set isJobRelated=false):\n" +
	"- Job alerts / recommended jobs / newsletters (LinkedIn alerts, Indeed alerts, 'jobs you may like')\n" +
	"- General career content, marketing, promos, unrelated notifications\n" +
	"- Messages about OTHER people's hiring not involving the recipient's application\n\n" +
	"Output constraints:\n" +
	"- status MUST be exactly one of: applied | interview | rejection | offer | unknown\n" +
	"- If you would output something else (e.g. rejected, interviewing, screening), map it to the closest allowed value.\n" +
	"- If job alert/newsletter => isJobRelated=false and status=unknown\n\n" +
	"POSITIVE RULES (isJobRelated=true):\n" +
	"- Confirmation of application received/submitted\n" +
	"- Interview invitation/scheduling/next steps\n" +
	"- Rejection/decline/not selected\n" +
	"- Offer/contract/compensation/offer call\n" +
	"- Recruiter outreach about a specific role asking to interview / apply / continue\n\n" +
	"Fields:\n" +
	"- company and position: ONLY if explicitly present; else null\n" +
	"- status:\n" +
	"  applied = application confirmation\n" +
	"  interview = any interview/assessment scheduling\n" +
	"  rejection = rejection message\n" +
	"  offer = offer message\n" +
	"  unknown = job-related but unclear stage\n" +
	"- eventType examples: recruiter_outreach, phone_screen, take_home, onsite, offer_call, general_update\n" +
	"- confidence: 0..1\n\n"

func buildMessages(mail Mail) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPromptHeader + fmt.Sprintf(
			"Email:\nFrom: %s\nSubject: %s\nDate: %s\nSnippet: %s\nBody:\n%s",
			mail.From, mail.Subject, mail.Date, mail.Snippet, mail.Body,
		)},
	}
}

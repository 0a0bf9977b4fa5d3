package service

import (
	"bytes"
	"strings"
	"text/template"
)

const extractionSystemPrompt = `You are an expert in talent acquisition and recruitment. Extract structured information from the provided resume PDF content. Focus on aspects for efficient resume retrieval.
Extract the following fields: name, current_position, location, summary, experiences, education, skills, certifications, languages, interests.
Respond with a single JSON object using exactly those keys.`

const extractionExample = `Generate sub-queries based on this initial resume content.
John Doe
Software Engineer at Tech Solutions
San Francisco, CA
Experienced Software Engineer with a demonstrated history of working in the information technology and services industry. Skilled in Python, Java, and cloud computing. Strong engineering professional with a Bachelor's degree in Computer Science from State University.
Experience:
- Software Engineer at Tech Solutions (2018 - Present)
- Developed and maintained web applications using Python and Java.
- Collaborated with cross-functional teams to define project requirements and deliverables.
- Junior Developer at Web Innovations (2016 - 2018)
- Assisted in the development of client websites and applications.
- Participated in code reviews and team meetings.
Education:
- Bachelor of Science in Computer Science, State University (2012 - 2016)
Skills:
- Programming Languages: Python, Java, JavaScript
- Frameworks: Django, React
- Tools: Git, Docker, AWS
Certifications:
- AWS Certified Solutions Architect
Languages:
- English (Native)
- Spanish (Professional Proficiency)
Interests:
- Hiking, Photography, Traveling`

const extractionUserPrompt = "from the following resume content, extract the relevant information based on initial document.\n"

// FactsQuery is the retrieval query used to summarise a freshly indexed resume.
const FactsQuery = "Provide a detailed analysis of the candidate based on the profile data."

const factsInstructions = `You are an expert in talent recruitment. Analyze the following resume profile into 4-5 more focused aspects to facilitate the resume search process.
Only use the information provided and do not create your own requirements.
If you don't know the answer, just say that you don't know, do not try to make up an answer.
Provide a detailed answer about the candidate.`

const answerInstructions = `You are an expert in recruiting talent who helps determine the best candidates on resume profiles.
Use the following information to answer the question. You must provide a detailed explanation of the profile.
If you don't know the answer, just say you don't know, don't try to make up a false answer.`

var promptTemplate = template.Must(template.New("prompt").Parse(`{{.Instructions}}

Context information is below.
---------------------
{{.Context}}
---------------------
{{if .Question}}
Question: {{.Question}}
Answer:{{end}}`))

type promptData struct {
	Instructions string
	Context      string
	Question     string
}

// renderPrompt builds the grounded generation prompt. The context block is
// the only resume content the model sees.
func renderPrompt(data promptData) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

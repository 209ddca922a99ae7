package pipeline

const promptIntro = `Write an introductory paragraph for Generative AI & ML use cases for %[1]s in this format:

GenAI & ML Use Cases for %[1]s

As one of the leading players in the [industry] sector, %[1]s can leverage Generative AI, Large Language Models (LLMs), and Machine Learning to enhance operational efficiency, improve product quality, and expand service offerings. By adopting a GenAI stack and collaborating with AI experts, %[1]s can unlock AI-driven solutions that drive innovation, streamline processes, and deliver superior results across operations.

Rules:
- Replace [industry] with the company's actual sector.
- Do not mention any URL.
`

const promptBrief = `Based on this company description:

%s

1. List reports and insights on AI and digital transformation from industry-specific sources such as McKinsey, Deloitte and Nexocode that are relevant to the company's industry.
2. Give concrete examples and trends of how companies in the same industry apply AI/ML (e.g. "how is the retail industry leveraging AI and ML").
3. Use the findings from steps 1 and 2 to outline AI/ML use cases tailored to the company.
`

const promptUseCases = `Based on this company description:

%s

Generate at least 4 Generative AI & ML use cases relevant to the company's industry and departments, each in this format:

Use Case Title: [Title]
Objective/Use Case: [Objective]
AI Application: [Specific AI technology used]
Cross-Functional Benefit: [Impacts on operations, finance, supply chain, etc.]

Ensure that each use case is unique and relevant to the company's operations and industry only.
`

const promptKeywords = `Based on the following AI/ML use cases:

%s

Generate a list of keywords that can be used to search datasets on platforms like Kaggle or Hugging Face, one entry per use case, in exactly this format:

**Use Case Title:** <title>
**Description:** <one sentence>
**Keywords:** <keyword>, <keyword>, <keyword>

Rules:
- Use bold only for the "Use Case Title", "Description" and "Keywords" labels, never for the content.
- Keep each label on its own line and separate entries with one blank line.
- Separate keywords with commas, with no extra punctuation or line breaks.
- Keywords should name technologies, methods, applications and industry terms.
- Do not provide the information in any other format.
`

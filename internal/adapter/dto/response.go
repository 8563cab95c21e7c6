package dto

// Attachment colors understood by the chat platform.
const (
	ColorGood    = "good"
	ColorWarning = "warning"
	ColorDanger  = "danger"
)

// Field is a titled value inside an attachment. Short fields may be laid out
// side by side.
type Field struct {
	Title string
	Value string
	Short bool
}

// Attachment is a colored block below the main message body.
type Attachment struct {
	Color    string
	Text     string
	Fields   []Field
	Fallback string
	Footer   string
}

// ChatResponse is the platform-independent outbound message: plain fallback
// text, ordered markdown blocks, and ordered attachments. Posting it is the
// transport layer's responsibility.
type ChatResponse struct {
	Text        string
	Blocks      []string
	Attachments []Attachment
}

// NewResponse creates a response with the given fallback text.
func NewResponse(text string) *ChatResponse {
	return &ChatResponse{Text: text}
}

// AddBlock appends a markdown section.
func (r *ChatResponse) AddBlock(text string) {
	r.Blocks = append(r.Blocks, text)
}

// AddAttachment appends an attachment.
func (r *ChatResponse) AddAttachment(a Attachment) {
	r.Attachments = append(r.Attachments, a)
}

// NewErrorResponse builds the standard error shape: a short title, a bold
// explanatory block, and a danger-colored attachment carrying the underlying
// error text.
func NewErrorResponse(title, errText string) *ChatResponse {
	r := NewResponse(title)
	r.AddBlock("*" + title + "*")
	r.AddAttachment(Attachment{
		Color:    ColorDanger,
		Text:     "Error: " + errText,
		Fallback: title,
	})
	return r
}

package model

// OutreachTemplate is a reusable content blob tagged with a channel category.
type OutreachTemplate struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Category EmailType `json:"category"`
}

type TemplatePatch struct {
	ID string `json:"id,omitempty"`

	Title    *string    `json:"title,omitempty"`
	Content  *string    `json:"content,omitempty"`
	Category *EmailType `json:"category,omitempty"`
}

func (p TemplatePatch) Apply(t *OutreachTemplate) {
	setStr(&t.Title, p.Title)
	setStr(&t.Content, p.Content)
	if p.Category != nil {
		t.Category = *p.Category
	}
}

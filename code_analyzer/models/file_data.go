package models

// FileObject is a file taking part in context assembly.
// A nil Content means the file is unreadable or deleted; an empty string is a real empty file.
type FileObject struct {
	Path            string  `json:"path"`
	Content         *string `json:"content"`
	OriginalContent *string `json:"original_content,omitempty"`
	TokenCount      int     `json:"token_count"`
}

// NewFileObject builds a FileObject holding a copy of content.
func NewFileObject(path string, content string) FileObject {
	return FileObject{Path: path, Content: StringPtr(content)}
}

// ContentOrEmpty returns the content, or "" when it is nil.
func (f FileObject) ContentOrEmpty() string {
	if f.Content == nil {
		return ""
	}
	return *f.Content
}

func StringPtr(s string) *string {
	return &s
}

// Changes groups the files reported by source control plus configured context files.
type Changes struct {
	Modified []FileObject
	Added    []FileObject
	Deleted  []FileObject
	Context  []FileObject
}

// IsEmpty reports whether no modified, added or deleted file was found.
func (c Changes) IsEmpty() bool {
	return len(c.Modified) == 0 && len(c.Added) == 0 && len(c.Deleted) == 0
}

// Category names a budget category, listed in admission priority order by Categories.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryContext  Category = "context"
	CategoryAdded    Category = "added"
	CategoryModified Category = "modified"
	CategoryDeleted  Category = "deleted"
	CategoryImported Category = "imported"
)

// Categories is the fixed admission order of the budgeter.
var Categories = []Category{
	CategoryConfig,
	CategoryContext,
	CategoryAdded,
	CategoryModified,
	CategoryDeleted,
	CategoryImported,
}

// IncludedFiles holds the admitted files of every category.
type IncludedFiles struct {
	ConfigFiles   []FileObject
	ContextFiles  []FileObject
	AddedFiles    []FileObject
	ModifiedFiles []FileObject
	DeletedFiles  []FileObject
	ImportedFiles []FileObject
}

// Get returns the included files of one category.
func (i *IncludedFiles) Get(category Category) []FileObject {
	switch category {
	case CategoryConfig:
		return i.ConfigFiles
	case CategoryContext:
		return i.ContextFiles
	case CategoryAdded:
		return i.AddedFiles
	case CategoryModified:
		return i.ModifiedFiles
	case CategoryDeleted:
		return i.DeletedFiles
	case CategoryImported:
		return i.ImportedFiles
	}
	return nil
}

// Append adds a file to the category's sequence.
func (i *IncludedFiles) Append(category Category, file FileObject) {
	switch category {
	case CategoryConfig:
		i.ConfigFiles = append(i.ConfigFiles, file)
	case CategoryContext:
		i.ContextFiles = append(i.ContextFiles, file)
	case CategoryAdded:
		i.AddedFiles = append(i.AddedFiles, file)
	case CategoryModified:
		i.ModifiedFiles = append(i.ModifiedFiles, file)
	case CategoryDeleted:
		i.DeletedFiles = append(i.DeletedFiles, file)
	case CategoryImported:
		i.ImportedFiles = append(i.ImportedFiles, file)
	}
}

// Count returns the number of included files across all categories.
func (i *IncludedFiles) Count() int {
	n := 0
	for _, c := range Categories {
		n += len(i.Get(c))
	}
	return n
}

// BudgetInput is the candidate set handed to the budgeter.
type BudgetInput struct {
	ConfigFiles   []FileObject
	ContextFiles  []FileObject
	AddedFiles    []FileObject
	ModifiedFiles []FileObject
	DeletedFiles  []FileObject
	ImportedFiles []FileObject
}

// Files returns the candidates of one category.
func (b BudgetInput) Files(category Category) []FileObject {
	switch category {
	case CategoryConfig:
		return b.ConfigFiles
	case CategoryContext:
		return b.ContextFiles
	case CategoryAdded:
		return b.AddedFiles
	case CategoryModified:
		return b.ModifiedFiles
	case CategoryDeleted:
		return b.DeletedFiles
	case CategoryImported:
		return b.ImportedFiles
	}
	return nil
}

// BudgetResult is the outcome of a budgeting pass.
// TotalTokens always equals the sum of TokenCount over IncludedFiles.
type BudgetResult struct {
	IncludedFiles IncludedFiles
	ExcludedFiles []FileObject
	TotalTokens   int
}

// AssembledContext is the full output of context assembly.
type AssembledContext struct {
	Changes       Changes
	ImportedFiles []FileObject
	ConfigFiles   []FileObject
	Result        BudgetResult
	Outlines      []FileOutline
	Ceiling       int
}

// Remaining returns the unused part of the token ceiling.
func (a AssembledContext) Remaining() int {
	if a.Ceiling <= a.Result.TotalTokens {
		return 0
	}
	return a.Ceiling - a.Result.TotalTokens
}

// OutlineTokens sums the token counts of the admitted outlines.
func (a AssembledContext) OutlineTokens() int {
	total := 0
	for _, outline := range a.Outlines {
		total += outline.TokenCount
	}
	return total
}

// FileOutline is a condensed view of a file that did not fit the budget.
type FileOutline struct {
	Path       string
	Elements   []string
	TokenCount int
}

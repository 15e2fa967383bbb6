package resolver

type RAGType string

const (
	RAGTypeProduct RAGType = "product"
	RAGTypeFAQ     RAGType = "faq"
	RAGTypePolicy  RAGType = "policy"
)

// RAGItem is one retrieved document as handed over by the retrieval layer.
type RAGItem struct {
	Type     RAGType                `json:"type"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type RAGEntry struct {
	Index    int // 1-based
	Type     RAGType
	Content  string
	Metadata map[string]interface{}
}

type RAGResult struct {
	HasData     bool
	HasProducts bool
	Items       []RAGEntry
}

// ResolveRAG indexes the known item types in order. Items of any other type are dropped.
func ResolveRAG(items []RAGItem) RAGResult {
	var result RAGResult
	for _, item := range items {
		switch item.Type {
		case RAGTypeProduct:
			result.HasProducts = true
		case RAGTypeFAQ, RAGTypePolicy:
		default:
			continue
		}
		result.Items = append(result.Items, RAGEntry{
			Index:    len(result.Items) + 1,
			Type:     item.Type,
			Content:  item.Content,
			Metadata: item.Metadata,
		})
	}
	result.HasData = len(result.Items) > 0
	return result
}

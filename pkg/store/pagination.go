package store

// Valores padrão de paginação.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Page é o resultado paginado devolvido pelos endpoints de listagem.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Paginate fatia items[(page-1)*pageSize : page*pageSize]. Páginas fora do
// intervalo devolvem Items vazio, nunca erro.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(items)
	start := total
	if page-1 <= total/pageSize {
		start = min((page-1)*pageSize, total)
	}
	end := start + min(pageSize, total-start)

	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	out := make([]T, end-start)
	copy(out, items[start:end])

	return Page[T]{
		Items:       out,
		Total:       total,
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasNextPage: end < total,
		HasPrevPage: page > 1,
	}
}

// Package directory contiene los DTOs del endpoint de identificación.
package directory

// Entry es un mapping que matchea la búsqueda. Identificación solamente:
// nunca confirma credenciales.
type Entry struct {
	UniqueID    string `json:"unique_id"`
	DisplayName string `json:"display_name"`
	Platform    string `json:"platform"`
	Role        string `json:"role"`
}

// SearchResponse agrupa los matches de un username.
type SearchResponse struct {
	Entries []Entry `json:"entries"`
}

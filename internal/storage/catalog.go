package storage

type Garment struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// Seam is an entry of the seam-name catalog used for autocompletion.
type Seam struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// TemplateEntry is a default operation of a garment, copied into new orders.
type TemplateEntry struct {
	Seam    string `json:"costura"`
	Machine string `json:"maquina"`
}

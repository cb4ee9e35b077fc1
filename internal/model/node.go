package model

// Node is the hierarchical view of the bookmark tree handed out by the
// bookmark store. A node with a URL is a bookmark, anything else is a folder.
type Node struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
	ParentID  string `json:"parentId,omitempty"`
	Children  []Node `json:"children,omitempty"`
	DateAdded int64  `json:"dateAdded,omitempty"` // unix millis
}

// IsFolder reports whether the node is a folder.
func (n Node) IsFolder() bool {
	return n.URL == ""
}

// FlatBookmark is a leaf bookmark annotated with the scope it was found in.
type FlatBookmark struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	ParentID      string `json:"parentId"`
	OriginScopeID string `json:"originScopeId,omitempty"`
}

package db

// Vault 是 secure.json 的整体结构；Salt 为 base64，Validation 为校验令牌密文。
// Iterations 记录创建时的 PBKDF2 迭代次数，缺省表示旧文件使用的 100000 次。
type Vault struct {
	Salt       string        `json:"salt"`
	Iterations int           `json:"iterations,omitempty"`
	Validation string        `json:"validation"`
	Items      []VaultRecord `json:"items"`
}

// VaultRecord 是落盘的保险库条目，除 ID 外每个字段都是独立加密的密文
type VaultRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	UserID   string `json:"user_id"`
	Password string `json:"password"`
	URL      string `json:"url"`
	Notes    string `json:"notes"`
}

package handler

import (
	"net/http"

	"github.com/daybook/internal/service"
	"github.com/gin-gonic/gin"
)

type vaultItemPayload struct {
	Title    string `json:"title"`
	UserID   string `json:"user_id"`
	Password string `json:"password"`
	URL      string `json:"url"`
	Notes    string `json:"notes"`
}

// vaultRequest 是所有保险库请求的公共结构：每次请求都携带主密码
type vaultRequest struct {
	MasterKey string            `json:"master_key"`
	Item      *vaultItemPayload `json:"item"`
}

func (r vaultRequest) itemInput() service.VaultItemInput {
	if r.Item == nil {
		return service.VaultItemInput{}
	}
	return service.VaultItemInput{
		Title:    r.Item.Title,
		UserID:   r.Item.UserID,
		Password: r.Item.Password,
		URL:      r.Item.URL,
		Notes:    r.Item.Notes,
	}
}

func (a *API) bindVaultRequest(c *gin.Context, requireItem bool) (vaultRequest, bool) {
	var req vaultRequest
	if !bindJSON(c, &req, "保险库参数错误") {
		return req, false
	}
	if req.MasterKey == "" {
		respondError(c, http.StatusBadRequest, "master_key 不能为空")
		return req, false
	}
	if requireItem && req.Item == nil {
		respondError(c, http.StatusBadRequest, "item 不能为空")
		return req, false
	}
	return req, true
}

// VaultStatus 返回保险库是否已初始化
func (a *API) VaultStatus(c *gin.Context) {
	initialized, err := a.vault.Initialized()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"initialized": initialized})
}

// InitVault 使用主密码初始化保险库
func (a *API) InitVault(c *gin.Context) {
	req, ok := a.bindVaultRequest(c, false)
	if !ok {
		return
	}
	if err := a.vault.Initialize(req.MasterKey); err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "保险库初始化成功"})
}

// ValidateVault 校验主密码
func (a *API) ValidateVault(c *gin.Context) {
	req, ok := a.bindVaultRequest(c, false)
	if !ok {
		return
	}
	if _, err := a.vault.Validate(req.MasterKey); err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// ListVaultItems 解密并返回全部条目
func (a *API) ListVaultItems(c *gin.Context) {
	req, ok := a.bindVaultRequest(c, false)
	if !ok {
		return
	}
	items, err := a.vault.List(req.MasterKey)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// AddVaultItem 加密并保存新条目
func (a *API) AddVaultItem(c *gin.Context) {
	req, ok := a.bindVaultRequest(c, true)
	if !ok {
		return
	}
	item, err := a.vault.Add(req.MasterKey, req.itemInput())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "条目已保存", "item": item})
}

// UpdateVaultItem 重新加密已有条目
func (a *API) UpdateVaultItem(c *gin.Context) {
	req, ok := a.bindVaultRequest(c, true)
	if !ok {
		return
	}
	item, err := a.vault.Update(req.MasterKey, c.Param("id"), req.itemInput())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "条目已更新", "item": item})
}

// DeleteVaultItem 删除条目；条目不存在时同样返回成功
func (a *API) DeleteVaultItem(c *gin.Context) {
	req, ok := a.bindVaultRequest(c, false)
	if !ok {
		return
	}
	if err := a.vault.Delete(req.MasterKey, c.Param("id")); err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "条目已删除"})
}

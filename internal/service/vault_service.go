package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/daybook/internal/db"
	"github.com/daybook/internal/logger"
	"github.com/daybook/internal/secure"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrVaultExists 在重复初始化保险库时返回
	ErrVaultExists = errors.New("vault already exists")
	// ErrVaultNotInitialized 在保险库尚未初始化时返回
	ErrVaultNotInitialized = errors.New("vault not initialized")
	// ErrInvalidKey 表示主口令无法通过校验令牌验证
	ErrInvalidKey = errors.New("invalid master key")
	// ErrVaultItemNotFound 在保险库条目不存在时返回
	ErrVaultItemNotFound = errors.New("vault item not found")
)

// VaultService 管理加密保险库。没有会话状态：每次操作都从调用方提供的口令重新派生并校验密钥。
type VaultService struct {
	vault      *db.Document[db.Vault]
	iterations int
	log        *zap.Logger
}

// VaultItem 为解密后的条目，只存在于内存
type VaultItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	UserID   string `json:"user_id"`
	Password string `json:"password"`
	URL      string `json:"url"`
	Notes    string `json:"notes"`
}

// VaultItemInput 定义新增/更新条目时的明文字段
type VaultItemInput struct {
	Title    string
	UserID   string
	Password string
	URL      string
	Notes    string
}

// NewVaultService 构造 VaultService；iterations 只作用于新建的保险库，低于 secure.MinIterations 时按下限处理
func NewVaultService(vault *db.Document[db.Vault], iterations int, log *zap.Logger) *VaultService {
	if iterations < secure.MinIterations {
		iterations = secure.MinIterations
	}
	return &VaultService{vault: vault, iterations: iterations, log: logger.OrNop(log)}
}

// Initialized 判断保险库文件是否存在
func (s *VaultService) Initialized() (bool, error) {
	return s.vault.Exists()
}

// Initialize 生成盐值与校验令牌并创建保险库；已存在时返回 ErrVaultExists，绝不覆盖
func (s *VaultService) Initialize(passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("%w: master key is required", ErrInvalidInput)
	}

	exists, err := s.vault.Exists()
	if err != nil {
		return fmt.Errorf("check vault: %w", err)
	}
	if exists {
		return ErrVaultExists
	}

	salt, err := secure.NewSalt()
	if err != nil {
		return err
	}
	token, err := secure.DeriveKey(passphrase, salt, s.iterations).NewValidationToken()
	if err != nil {
		return fmt.Errorf("create validation token: %w", err)
	}

	err = s.vault.Create(db.Vault{
		Salt:       secure.EncodeSalt(salt),
		Iterations: s.iterations,
		Validation: token,
		Items:      []db.VaultRecord{},
	})
	if errors.Is(err, db.ErrDocumentExists) {
		return ErrVaultExists
	}
	if err != nil {
		return fmt.Errorf("create vault: %w", err)
	}
	return nil
}

// Validate 校验口令，成功时返回派生出的 Cipher
func (s *VaultService) Validate(passphrase string) (*secure.Cipher, error) {
	vault, err := s.load()
	if err != nil {
		return nil, err
	}
	return s.unlock(vault, passphrase)
}

// List 解密并返回全部条目；单个条目解密失败时跳过并记录日志
func (s *VaultService) List(passphrase string) ([]VaultItem, error) {
	vault, err := s.load()
	if err != nil {
		return nil, err
	}
	cipher, err := s.unlock(vault, passphrase)
	if err != nil {
		return nil, err
	}

	items := make([]VaultItem, 0, len(vault.Items))
	for _, record := range vault.Items {
		item, err := decryptRecord(cipher, record)
		if err != nil {
			s.log.Warn("skipping undecryptable vault item", zap.String("id", record.ID), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Add 加密并追加条目
func (s *VaultService) Add(passphrase string, input VaultItemInput) (*VaultItem, error) {
	if err := validateVaultItemInput(input); err != nil {
		return nil, err
	}

	item := vaultItemFromInput(uuid.NewString(), input)
	err := s.vault.Update(func(vault *db.Vault) error {
		cipher, err := s.unlock(*vault, passphrase)
		if err != nil {
			return err
		}
		record, err := encryptItem(cipher, item)
		if err != nil {
			return err
		}
		vault.Items = append(vault.Items, record)
		return nil
	})
	if err != nil {
		return nil, wrapVaultError("add vault item", err)
	}
	return &item, nil
}

// Update 用新的明文字段重新加密已有条目
func (s *VaultService) Update(passphrase, id string, input VaultItemInput) (*VaultItem, error) {
	if err := validateVaultItemInput(input); err != nil {
		return nil, err
	}

	item := vaultItemFromInput(id, input)
	err := s.vault.Update(func(vault *db.Vault) error {
		cipher, err := s.unlock(*vault, passphrase)
		if err != nil {
			return err
		}
		for i := range vault.Items {
			if vault.Items[i].ID != id {
				continue
			}
			record, err := encryptItem(cipher, item)
			if err != nil {
				return err
			}
			vault.Items[i] = record
			return nil
		}
		return ErrVaultItemNotFound
	})
	if err != nil {
		return nil, wrapVaultError("update vault item", err)
	}
	return &item, nil
}

// Delete 删除条目；条目不存在时同样视为成功
func (s *VaultService) Delete(passphrase, id string) error {
	err := s.vault.Update(func(vault *db.Vault) error {
		if _, err := s.unlock(*vault, passphrase); err != nil {
			return err
		}
		vault.Items = slices.DeleteFunc(vault.Items, func(record db.VaultRecord) bool {
			return record.ID == id
		})
		return nil
	})
	return wrapVaultError("delete vault item", err)
}

func (s *VaultService) load() (db.Vault, error) {
	vault, err := s.vault.Load()
	if err != nil {
		return db.Vault{}, fmt.Errorf("load vault: %w", err)
	}
	return vault, nil
}

// unlock 按保险库记录的迭代次数派生密钥并校验令牌；任何失败都归为 ErrInvalidKey
func (s *VaultService) unlock(vault db.Vault, passphrase string) (*secure.Cipher, error) {
	if vault.Salt == "" {
		return nil, ErrVaultNotInitialized
	}
	if passphrase == "" {
		return nil, ErrInvalidKey
	}

	salt, err := secure.DecodeSalt(vault.Salt)
	if err != nil {
		return nil, ErrInvalidKey
	}

	iterations := vault.Iterations
	if iterations <= 0 {
		iterations = secure.MinIterations
	}
	cipher := secure.DeriveKey(passphrase, salt, iterations)
	if !cipher.CheckValidationToken(vault.Validation) {
		return nil, ErrInvalidKey
	}
	return cipher, nil
}

func validateVaultItemInput(input VaultItemInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: vault item title is required", ErrInvalidInput)
	}
	if input.Password == "" {
		return fmt.Errorf("%w: vault item password is required", ErrInvalidInput)
	}
	return nil
}

func vaultItemFromInput(id string, input VaultItemInput) VaultItem {
	return VaultItem{
		ID:       id,
		Title:    strings.TrimSpace(input.Title),
		UserID:   input.UserID,
		Password: input.Password,
		URL:      strings.TrimSpace(input.URL),
		Notes:    input.Notes,
	}
}

func encryptItem(cipher *secure.Cipher, item VaultItem) (db.VaultRecord, error) {
	record := db.VaultRecord{ID: item.ID}
	fields := []struct {
		dst   *string
		plain string
	}{
		{&record.Title, item.Title},
		{&record.UserID, item.UserID},
		{&record.Password, item.Password},
		{&record.URL, item.URL},
		{&record.Notes, item.Notes},
	}
	for _, field := range fields {
		encrypted, err := cipher.Encrypt(field.plain)
		if err != nil {
			return db.VaultRecord{}, fmt.Errorf("encrypt vault item: %w", err)
		}
		*field.dst = encrypted
	}
	return record, nil
}

func decryptRecord(cipher *secure.Cipher, record db.VaultRecord) (VaultItem, error) {
	item := VaultItem{ID: record.ID}
	fields := []struct {
		dst       *string
		encrypted string
	}{
		{&item.Title, record.Title},
		{&item.UserID, record.UserID},
		{&item.Password, record.Password},
		{&item.URL, record.URL},
		{&item.Notes, record.Notes},
	}
	for _, field := range fields {
		plain, err := cipher.Decrypt(field.encrypted)
		if err != nil {
			return VaultItem{}, err
		}
		*field.dst = plain
	}
	return item, nil
}

func wrapVaultError(action string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidKey),
		errors.Is(err, ErrVaultNotInitialized),
		errors.Is(err, ErrVaultItemNotFound):
		return err
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}

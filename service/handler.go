package service

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/hiding/codec/timelong"
	"github.com/kochabx/hiding/core/alphabet"
	"github.com/kochabx/hiding/core/rate"
	"github.com/kochabx/hiding/core/util/qrcode"
	"github.com/kochabx/hiding/errors"
	middleware "github.com/kochabx/hiding/middleware/http"
	khttp "github.com/kochabx/hiding/transport/http"
)

// Handler 编码器的 HTTP 接口
type Handler struct {
	svc     *Service
	limiter rate.Limiter
	admin   AdminConfig
}

// NewHandler limiter 为 nil 时不限流，admin.Secret 为空时不注册管理接口
func NewHandler(svc *Service, limiter rate.Limiter, admin AdminConfig) *Handler {
	return &Handler{svc: svc, limiter: limiter, admin: admin}
}

// Register 注册 /v1 与 /admin 路由
func (h *Handler) Register(r gin.IRouter) {
	// 解析与校验接口按客户端 IP 限流
	limited := []gin.HandlerFunc{}
	if h.limiter != nil {
		limited = append(limited, middleware.RateLimit(middleware.RateLimitConfig{Limiter: h.limiter}))
	}
	with := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(limited[:len(limited):len(limited)], fn)
	}

	v1 := r.Group("/v1")
	{
		v1.POST("/number/generate", h.numberGenerate)
		v1.POST("/number/parse", with(h.numberParse)...)

		v1.POST("/timelong/generate", h.timelongGenerate)
		v1.POST("/timelong/parse", with(h.timelongParse)...)

		v1.POST("/timenumber/generate", h.timenumberGenerate)
		v1.POST("/timenumber/parse", with(h.timenumberParse)...)

		v1.POST("/activation/generate", h.activationGenerate)
		v1.POST("/activation/batch", h.activationBatch)
		v1.POST("/activation/parse", with(h.activationParse)...)
		v1.POST("/activation/validate", with(h.activationValidate)...)
		v1.POST("/activation/card", with(h.activationCard)...)
		v1.GET("/activation/qrcode", h.activationQRCode)
	}

	if h.admin.Secret != "" {
		admin := r.Group("/admin", middleware.Signature(middleware.SignatureConfig{
			Secret:     h.admin.Secret,
			Expiration: h.admin.Expiration,
		}))
		admin.POST("/timelong/parse", h.adminTimelongParse)
	}
}

type numberRequest struct {
	Number *uint64 `json:"number" binding:"required"`
}

type codeRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}

type activationGenerateRequest struct {
	ShopID string  `json:"shop_id" binding:"required,max=32"`
	CardID *uint64 `json:"card_id" binding:"required"`
	Serial *uint32 `json:"serial" binding:"required"`
}

type activationBatchRequest struct {
	ShopID  string   `json:"shop_id" binding:"required,max=32"`
	CardIDs []uint64 `json:"card_ids" binding:"required,min=1"`
}

type activationCodeRequest struct {
	ShopID string `json:"shop_id" binding:"required,max=32"`
	Code   string `json:"code" binding:"required,max=64"`
}

type activationCardRequest struct {
	Code   string  `json:"code" binding:"required,max=64"`
	CardID *uint64 `json:"card_id" binding:"required"`
}

type qrcodeRequest struct {
	Code string `form:"code" binding:"required,len=16"`
	Size int    `form:"size,default=256" binding:"min=64,max=1024"`
}

// bind 解析请求体，失败时写入 400 响应
func bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		khttp.GinJSONE(c, errors.BadRequest("invalid request: %v", err))
		return false
	}
	return true
}

func (h *Handler) numberGenerate(c *gin.Context) {
	var req numberRequest
	if !bind(c, &req) {
		return
	}
	g := h.svc.Number()
	if g == nil {
		khttp.GinJSONE(c, ErrNumberDisabled)
		return
	}
	code, err := g.Generate(*req.Number)
	if err != nil {
		khttp.GinJSONE(c, err)
		return
	}
	khttp.GinJSON(c, gin.H{"code": code})
}

func (h *Handler) numberParse(c *gin.Context) {
	var req codeRequest
	if !bind(c, &req) {
		return
	}
	g := h.svc.Number()
	if g == nil {
		khttp.GinJSONE(c, ErrNumberDisabled)
		return
	}
	n, err := g.Parse(req.Code)
	if err != nil {
		khttp.GinJSONE(c, err)
		return
	}
	khttp.GinJSON(c, gin.H{"number": n})
}

func (h *Handler) timelongGenerate(c *gin.Context) {
	var req numberRequest
	if !bind(c, &req) {
		return
	}
	g := h.svc.TimeLong()
	if g == nil {
		khttp.GinJSONE(c, ErrTimeLongDisabled)
		return
	}
	code, err := g.Generate(*req.Number)
	if err != nil {
		khttp.GinJSONE(c, err)
		return
	}
	khttp.GinJSON(c, gin.H{"code": code})
}

func (h *Handler) timelongParse(c *gin.Context) {
	h.parseTimelong(c, true)
}

func (h *Handler) adminTimelongParse(c *gin.Context) {
	h.parseTimelong(c, false)
}

func (h *Handler) parseTimelong(c *gin.Context, checkExpiry bool) {
	var req codeRequest
	if !bind(c, &req) {
		return
	}
	g := h.svc.TimeLong()
	if g == nil {
		khttp.GinJSONE(c, ErrTimeLongDisabled)
		return
	}
	n, err := g.Parse(req.Code, timelong.CheckExpiry(checkExpiry))
	if err != nil {
		khttp.GinJSONE(c, err)
		return
	}
	khttp.GinJSON(c, gin.H{"number": n})
}

func (h *Handler) timenumberGenerate(c *gin.Context) {
	var req numberRequest
	if !bind(c, &req) {
		return
	}
	g := h.svc.TimeNumber()
	if g == nil {
		khttp.GinJSONE(c, ErrTimeNumberDisabled)
		return
	}
	code, err := g.Generate(*req.Number)
	if err != nil {
		khttp.GinJSONE(c, err)
		return
	}
	khttp.GinJSON(c, gin.H{"code": code})
}

func (h *Handler) timenumberParse(c *gin.Context) {
	var req codeRequest
	if !bind(c, &req) {
		return
	}
	g := h.svc.TimeNumber()
	if g == nil {
		khttp.GinJSONE(c, ErrTimeNumberDisabled)
		return
	}
	n, err := g.Parse(req.Code)
	if err != nil {
		khttp.GinJSONE(c, err)
		return
	}
	khttp.GinJSON(c, gin.H{"number": n})
}

func (h *Handler) activationGenerate(c *gin.Context) {
	var req activationGenerateRequest
	if !bind(c, &req) {
		return
	}
	g := h.svc.Activation()
	if g == nil {
		khttp.GinJSONE(c, ErrActivationDisabled)
		return
	}
	code, err := g.Generate(req.ShopID, *req.CardID, *req.Serial)
	if err != nil {
		khttp.GinJSONE(c, err)
		return
	}
	khttp.GinJSON(c, gin.H{"code": code})
}

func (h *Handler) activationBatch(c *gin.Context) {
	var req activationBatchRequest
	if !bind(c, &req) {
		return
	}
	items, err := h.svc.IssueActivationBatch(c.Request.Context(), req.ShopID, req.CardIDs)
	if err != nil {
		khttp.GinJSONE(c, err)
		return
	}
	khttp.GinJSON(c, gin.H{"items": items})
}

func (h *Handler) activationParse(c *gin.Context) {
	var req activationCodeRequest
	if !bind(c, &req) {
		return
	}
	g := h.svc.Activation()
	if g == nil {
		khttp.GinJSONE(c, ErrActivationDisabled)
		return
	}
	serial, err := g.Parse(req.ShopID, req.Code)
	if err != nil {
		khttp.GinJSONE(c, err)
		return
	}
	khttp.GinJSON(c, gin.H{"serial": serial})
}

func (h *Handler) activationValidate(c *gin.Context) {
	var req activationCodeRequest
	if !bind(c, &req) {
		return
	}
	g := h.svc.Activation()
	if g == nil {
		khttp.GinJSONE(c, ErrActivationDisabled)
		return
	}
	khttp.GinJSON(c, gin.H{"valid": g.Validate(req.ShopID, req.Code)})
}

func (h *Handler) activationCard(c *gin.Context) {
	var req activationCardRequest
	if !bind(c, &req) {
		return
	}
	g := h.svc.Activation()
	if g == nil {
		khttp.GinJSONE(c, ErrActivationDisabled)
		return
	}
	khttp.GinJSON(c, gin.H{"valid": g.ValidateCard(req.Code, *req.CardID)})
}

func (h *Handler) activationQRCode(c *gin.Context) {
	var req qrcodeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		khttp.GinJSONE(c, errors.BadRequest("invalid request: %v", err))
		return
	}
	// 只渲染激活码字符集内的内容
	if strings.ContainsFunc(req.Code, func(r rune) bool { return !strings.ContainsRune(alphabet.Base32, r) }) {
		khttp.GinJSONE(c, errors.BadRequest("code contains symbols outside the activation set"))
		return
	}

	png, err := qrcode.PNG(req.Code, req.Size, qrcode.Medium)
	if err != nil {
		khttp.GinJSONE(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/internal/apperr"
	"inkwell/internal/tools"
	"inkwell/internal/utils"
)

// ToolsHandler serves the stateless utilities under /api/tools.
type ToolsHandler struct {
	now func() time.Time
}

func NewToolsHandler() *ToolsHandler {
	return &ToolsHandler{now: time.Now}
}

type base64Request struct {
	Input   string `json:"input"`
	Decode  bool   `json:"decode"`
	URLSafe bool   `json:"url_safe"`
}

func (h *ToolsHandler) Base64(c *gin.Context) {
	var req base64Request
	if !bindJSON(c, &req) {
		return
	}
	if !req.Decode {
		c.JSON(http.StatusOK, gin.H{"output": tools.Base64Encode(req.Input, req.URLSafe)})
		return
	}
	out, err := tools.Base64Decode(req.Input, req.URLSafe)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"output": out})
}

func (h *ToolsHandler) Password(c *gin.Context) {
	var opts tools.PasswordOptions
	if !bindJSON(c, &opts) {
		return
	}
	result, err := tools.GeneratePassword(opts)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Color GET /api/tools/color?value=#ff8800
func (h *ToolsHandler) Color(c *gin.Context) {
	result, err := tools.ConvertColor(c.Query("value"))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Timestamp GET /api/tools/timestamp?input=1700000000&zone=Asia/Shanghai
func (h *ToolsHandler) Timestamp(c *gin.Context) {
	result, err := tools.ConvertTimestamp(c.Query("input"), c.Query("zone"), h.now())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// QRCode GET /api/tools/qrcode?text=...&size=256&level=m，直接返回 PNG
func (h *ToolsHandler) QRCode(c *gin.Context) {
	png, err := tools.QRCodePNG(c.Query("text"), utils.StringToInt(c.Query("size")), c.Query("level"))
	if err != nil {
		Fail(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

// DataGen GET /api/tools/datagen?kind=email&count=10&seed=42
func (h *ToolsHandler) DataGen(c *gin.Context) {
	var seed int64
	if s := c.Query("seed"); s != "" {
		var err error
		if seed, err = strconv.ParseInt(s, 10, 64); err != nil {
			Fail(c, apperr.Validation("seed 必须是整数"))
			return
		}
	}
	count := utils.StringToInt(c.DefaultQuery("count", "10"))
	items, err := tools.GenerateData(tools.DataKind(c.Query("kind")), count, seed)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
	"github.com/syariahos/syariahos-api/internal/reference"
)

// IslamicHandler proxies Quran and Hadith lookups.
type IslamicHandler struct {
	reference *reference.Client
}

// NewIslamicHandler constructs an IslamicHandler.
func NewIslamicHandler(client *reference.Client) *IslamicHandler {
	return &IslamicHandler{reference: client}
}

func (h *IslamicHandler) write(c *gin.Context, data json.RawMessage, err error) {
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Surahs lists the surahs.
func (h *IslamicHandler) Surahs(c *gin.Context) {
	data, errFetch := h.reference.Surahs(c.Request.Context())
	h.write(c, data, errFetch)
}

// Surah returns one surah.
func (h *IslamicHandler) Surah(c *gin.Context) {
	number, errParse := strconv.Atoi(c.Param("number"))
	if errParse != nil {
		respond.Error(c, reference.ErrNotFound)
		return
	}
	data, errFetch := h.reference.Surah(c.Request.Context(), number)
	h.write(c, data, errFetch)
}

// HadithBooks lists the hadith collections.
func (h *IslamicHandler) HadithBooks(c *gin.Context) {
	data, errFetch := h.reference.Books(c.Request.Context())
	h.write(c, data, errFetch)
}

// Hadith returns one hadith from a whitelisted book.
func (h *IslamicHandler) Hadith(c *gin.Context) {
	number, errParse := strconv.Atoi(c.Param("number"))
	if errParse != nil {
		respond.Error(c, reference.ErrNotFound)
		return
	}
	data, errFetch := h.reference.Hadith(c.Request.Context(), c.Param("book"), number)
	h.write(c, data, errFetch)
}

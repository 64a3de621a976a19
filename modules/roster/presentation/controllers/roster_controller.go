package controllers

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jacksonlee411/unit-roster/internal/routing"
	"github.com/jacksonlee411/unit-roster/modules/roster/domain/types"
	"github.com/jacksonlee411/unit-roster/modules/roster/services"
	"github.com/jacksonlee411/unit-roster/pkg/httperr"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const (
	DownloadFilename = "data_processed.json"
	ExportFilename   = "roster.xlsx"

	multipartMemory = 8 << 20
)

type RosterController struct {
	Facade services.RosterFacade
	Logger *zap.Logger
}

type pageRow struct {
	No       int
	ID       string
	Name     string
	Unit     string
	UnitName string
}

type pageData struct {
	Lang  string
	View  services.ListView
	Units []types.UnitEntry
	Rows  []pageRow
}

func (p pageData) T(key string) string { return tr(p.Lang, key) }

func (c RosterController) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c RosterController) HandleIndex(w http.ResponseWriter, r *http.Request) {
	view, err := c.Facade.List(r.Context(), r.URL.Query().Get("don_vi"))
	if err != nil {
		c.fail(w, r, routing.RouteClassUI, err)
		return
	}

	data := pageData{Lang: langOf(r), View: view, Units: view.Mapping.Entries()}
	data.Rows = make([]pageRow, 0, len(view.Records))
	for i, e := range view.Records {
		data.Rows = append(data.Rows, pageRow{No: i + 1, ID: e.ID, Name: e.Name, Unit: e.Unit, UnitName: e.UnitName})
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		c.fail(w, r, routing.RouteClassUI, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (c RosterController) HandleUpload(w http.ResponseWriter, r *http.Request) {
	// A body that is not multipart leaves the form empty and the upload fails
	// on the missing scope.
	_ = r.ParseMultipartForm(multipartMemory)
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	req := services.UploadRequest{Scope: r.FormValue("unit_scope")}
	file, header, err := r.FormFile("data_file")
	if err == nil {
		defer func() { _ = file.Close() }()
		req.File = &services.UploadFile{Name: uploadName(header), Reader: file}
	}

	n, err := c.Facade.Upload(r.Context(), req)
	if err != nil {
		c.fail(w, r, routing.RouteClassUI, err)
		return
	}
	c.logger().Info("upload accepted", zap.Int("records", n), zap.String("scope", strings.TrimSpace(req.Scope)))
	http.Redirect(w, r, "/", http.StatusFound)
}

func uploadName(h *multipart.FileHeader) string {
	if h == nil {
		return ""
	}
	return h.Filename
}

func (c RosterController) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results, err := c.Facade.Search(r.Context(), q.Get("q"), q.Get("don_vi"))
	if err != nil {
		c.fail(w, r, routing.RouteClassInternalAPI, err)
		return
	}
	if results == nil {
		results = make([]types.Projection, 0)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(results)
}

func (c RosterController) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	res, err := c.Facade.Update(r.Context(), r.PostForm.Get("id"), r.PostForm.Get("don_vi"))
	if err != nil {
		c.fail(w, r, routing.RouteClassUI, err)
		return
	}
	if !res.Applied {
		c.logger().Debug("update not applied", zap.String("reason", res.Reason))
	}
	redirectToFilter(w, r)
}

func (c RosterController) HandleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	if _, err := c.Facade.BulkUpdate(r.Context(), r.PostForm["ids"], r.PostForm.Get("don_vi")); err != nil {
		c.fail(w, r, routing.RouteClassUI, err)
		return
	}
	redirectToFilter(w, r)
}

func (c RosterController) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	if _, err := c.Facade.Delete(r.Context(), r.PostForm.Get("id")); err != nil {
		c.fail(w, r, routing.RouteClassUI, err)
		return
	}
	redirectToFilter(w, r)
}

// redirectToFilter sends the browser back to the listing it came from.
func redirectToFilter(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/?don_vi="+url.QueryEscape(r.PostForm.Get("filter_unit")), http.StatusFound)
}

func (c RosterController) HandleDownload(w http.ResponseWriter, r *http.Request) {
	info, rc, err := c.Facade.Download(r.Context())
	if err != nil {
		c.fail(w, r, routing.RouteClassUI, err)
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+DownloadFilename+`"`)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		c.logger().Warn("download interrupted", zap.Error(err))
	}
}

func (c RosterController) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	view, err := c.Facade.List(r.Context(), r.URL.Query().Get("don_vi"))
	if err != nil {
		c.fail(w, r, routing.RouteClassUI, err)
		return
	}
	var buf bytes.Buffer
	if err := writeRosterXLSX(&buf, langOf(r), view); err != nil {
		c.fail(w, r, routing.RouteClassUI, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

// HandleLang returns a handler that stores lang in a cookie and goes home.
func (c RosterController) HandleLang(lang string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setLangCookie(w, lang)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// fail answers 400 with a localized message for client errors and 500 for
// everything else.
func (c RosterController) fail(w http.ResponseWriter, r *http.Request, rc routing.RouteClass, err error) {
	lang := langOf(r)
	if httperr.IsBadRequest(err) {
		routing.WriteError(w, r, rc, http.StatusBadRequest, httperr.Code(err), errorMessage(lang, err))
		return
	}
	if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		c.logger().Info("request canceled", zap.String("path", r.URL.Path))
		return
	}
	c.logger().Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	routing.WriteError(w, r, rc, http.StatusInternalServerError, "internal_error", tr(lang, "internal_error"))
}

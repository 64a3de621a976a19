package controllers

import (
	"errors"
	"net/http"

	"github.com/jacksonlee411/unit-roster/pkg/httperr"
)

const (
	LangVI = "vi"
	LangEN = "en"

	langCookie = "lang"
)

func setLangCookie(w http.ResponseWriter, lang string) {
	http.SetCookie(w, &http.Cookie{
		Name:     langCookie,
		Value:    lang,
		Path:     "/",
		MaxAge:   365 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// langOf defaults to Vietnamese.
func langOf(r *http.Request) string {
	c, err := r.Cookie(langCookie)
	if err != nil {
		return LangVI
	}
	if c.Value == LangEN {
		return LangEN
	}
	return LangVI
}

var messages = map[string]map[string]string{
	LangVI: {
		"title":               "Quản lý quân số theo đơn vị",
		"upload":              "Tải dữ liệu lên",
		"unit_scope":          "Đơn vị gốc",
		"data_file":           "File dữ liệu (.json)",
		"submit_upload":       "Tải lên",
		"download":            "Tải xuống JSON",
		"export":              "Xuất Excel",
		"filter":              "Lọc theo đơn vị",
		"all_units":           "Tất cả đơn vị",
		"apply":               "Lọc",
		"search":              "Tìm theo tên",
		"total":               "Tổng số",
		"stats":               "Thống kê theo đơn vị",
		"col_id":              "Số hiệu",
		"col_name":            "Họ và tên",
		"col_unit":            "Đơn vị",
		"col_count":           "Số lượng",
		"col_actions":         "Thao tác",
		"move":                "Chuyển",
		"delete":              "Xóa",
		"confirm_delete":      "Xóa bản ghi này?",
		"bulk_move":           "Chuyển các mục đã chọn",
		"no_unit":             "(không có đơn vị)",
		"empty":               "Chưa có dữ liệu.",
		"current_scope":       "Phạm vi hiện tại",
		"unscoped":            "(tất cả)",
		"unit_scope_required": "Vui lòng chọn đơn vị gốc trước khi tải lên",
		"data_file_required":  "Vui lòng chọn file .json",
		"data_file_type":      "Chỉ chấp nhận file JSON",
		"data_file_too_large": "File quá lớn",
		"invalid_json":        "File JSON không hợp lệ",
		"invalid_structure":   "Cấu trúc JSON không hợp lệ",
		"record_rejected":     "Bản ghi không đạt điều kiện",
		"dataset_not_found":   "Chưa có dữ liệu để tải",
		"internal_error":      "Lỗi hệ thống",
		"sheet_roster":        "Danh sách",
		"sheet_stats":         "Thống kê",
		"col_no":              "STT",
		"col_unit_code":       "Mã đơn vị",
	},
	LangEN: {
		"title":               "Unit roster",
		"upload":              "Upload data",
		"unit_scope":          "Root unit",
		"data_file":           "Data file (.json)",
		"submit_upload":       "Upload",
		"download":            "Download JSON",
		"export":              "Export Excel",
		"filter":              "Filter by unit",
		"all_units":           "All units",
		"apply":               "Filter",
		"search":              "Search by name",
		"total":               "Total",
		"stats":               "Per-unit counts",
		"col_id":              "ID",
		"col_name":            "Full name",
		"col_unit":            "Unit",
		"col_count":           "Count",
		"col_actions":         "Actions",
		"move":                "Move",
		"delete":              "Delete",
		"confirm_delete":      "Delete this record?",
		"bulk_move":           "Move selected",
		"no_unit":             "(no unit)",
		"empty":               "No data yet.",
		"current_scope":       "Current scope",
		"unscoped":            "(all)",
		"unit_scope_required": "Please choose a root unit before uploading",
		"data_file_required":  "Please choose a .json file",
		"data_file_type":      "Only JSON files are accepted",
		"data_file_too_large": "File is too large",
		"invalid_json":        "Invalid JSON file",
		"invalid_structure":   "Invalid JSON structure",
		"record_rejected":     "A record failed the upload rule",
		"dataset_not_found":   "No data to download yet",
		"internal_error":      "Internal error",
		"sheet_roster":        "Roster",
		"sheet_stats":         "Stats",
		"col_no":              "No.",
		"col_unit_code":       "Unit code",
	},
}

func tr(lang string, key string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := messages[LangVI][key]; ok {
		return s
	}
	return key
}

// errorMessage localizes a client error. The detail, if any, is appended.
func errorMessage(lang string, err error) string {
	code := httperr.Code(err)
	if code == "" {
		return tr(lang, "internal_error")
	}
	msg := tr(lang, code)
	if e, ok := errors.AsType[*httperr.BadRequestError](err); ok && e.Detail() != "" {
		msg += " (" + e.Detail() + ")"
	}
	return msg
}

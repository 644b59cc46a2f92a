package leadsvc

import (
	"strings"
)

// phoneStripChars là các ký tự định dạng được loại bỏ khỏi số điện thoại.
const phoneStripChars = " \t\n\r-()./"

// NormalizePhone chuẩn hóa số điện thoại về dạng "0xxxxxxxxx".
// Thứ tự xử lý:
//  1. Loại bỏ khoảng trắng, gạch ngang, ngoặc, dấu chấm, dấu gạch chéo
//  2. "+84..." -> "0..."
//  3. "84..." với độ dài >= 11 -> "0..."
//  4. Kết quả phải khác rỗng và toàn chữ số, nếu không trả về ok=false
//
// Hàm thuần, không I/O.
func NormalizePhone(raw string) (normalized string, ok bool) {
	var b strings.Builder
	for _, r := range raw {
		if strings.ContainsRune(phoneStripChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	s := b.String()

	if strings.HasPrefix(s, "+84") {
		s = "0" + s[3:]
	} else if strings.HasPrefix(s, "84") && len(s) >= 11 {
		s = "0" + s[2:]
	}

	if s == "" {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s, true
}

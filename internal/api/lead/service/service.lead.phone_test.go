// Package leadsvc - Test chuẩn hóa số điện thoại.
package leadsvc

import (
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"số có +84 và khoảng trắng", "+84 912 345 678", "0912345678", true},
		{"số có tiền tố 84 không dấu cộng", "84912345678", "0912345678", true},
		{"số có gạch ngang", "0912-345-678", "0912345678", true},
		{"số có ngoặc và chấm", "(0912).345.678", "0912345678", true},
		{"số có gạch chéo", "0912/345/678", "0912345678", true},
		{"số ngắn bắt đầu 84 giữ nguyên", "8412345", "8412345", true},
		{"số nội bộ ngắn", "12345", "12345", true},
		{"dấu phẩy không phải ký tự định dạng", "09,12", "", false},
		{"chứa chữ cái", "abc", "", false},
		{"chứa chữ lẫn số", "0912abc678", "", false},
		{"chuỗi rỗng", "", "", false},
		{"chỉ toàn ký tự định dạng", " -() ", "", false},
		{"dấu cộng không phải +84", "+14155552671", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizePhone(tc.raw)
			if ok != tc.ok {
				t.Fatalf("NormalizePhone(%q) ok = %v, muốn %v", tc.raw, ok, tc.ok)
			}
			if got != tc.want {
				t.Errorf("NormalizePhone(%q) = %q, muốn %q", tc.raw, got, tc.want)
			}
		})
	}
}

// Chuẩn hóa hai lần phải cho cùng kết quả với chuẩn hóa một lần.
func TestNormalizePhone_Idempotent(t *testing.T) {
	inputs := []string{"+84 912 345 678", "84912345678", "0912-345-678", "0912345678"}
	for _, raw := range inputs {
		once, ok := NormalizePhone(raw)
		if !ok {
			t.Fatalf("NormalizePhone(%q) thất bại", raw)
		}
		twice, ok := NormalizePhone(once)
		if !ok {
			t.Fatalf("NormalizePhone(%q) lần hai thất bại", once)
		}
		if once != twice {
			t.Errorf("NormalizePhone không idempotent: %q -> %q -> %q", raw, once, twice)
		}
	}
}

package notify

import (
	"fmt"
	"strings"
	"time"
)

// Credential: pasangan email+password yang dikirim ke pembeli (plaintext).
type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FormatRupiah: 270000 -> "Rp 270.000".
func FormatRupiah(n int64) string {
	neg := ""
	if n < 0 {
		neg = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return "Rp " + neg + strings.Join(parts, ".")
}

// FormatAccounts utk pesan WA:
//
//	1. Email: a@b.c
//	   Password: xyz
func FormatAccounts(accounts []Credential) string {
	lines := make([]string, 0, len(accounts))
	for i, a := range accounts {
		lines = append(lines, fmt.Sprintf("%d. Email: %s\n   Password: %s", i+1, a.Email, a.Password))
	}
	return strings.Join(lines, "\n\n")
}

func emailShell(content string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto;">%s<div style="font-size: 12px; color: #888;">&copy; %d F-PEDIA. All rights reserved.</div></div>`,
		content, time.Now().Year())
}

type OrderInfo struct {
	TransactionID string
	ProductTitle  string
	Quantity      int
	Total         int64
	BuyerEmail    string
	BuyerWhatsApp string
	PromoText     string
	Instructions  string
	ExpiresAt     time.Time
}

// AdminNewOrderWA: notifikasi order baru ke nomor admin.
func AdminNewOrderWA(o OrderInfo) string {
	return fmt.Sprintf("*Order Baru F-PEDIA*\n\nProduk: %s\nJumlah: %d\nTotal: %s\nPemesan: %s\nWA: %s\nOrder ID: %s",
		o.ProductTitle, o.Quantity, FormatRupiah(o.Total), o.BuyerEmail, o.BuyerWhatsApp, o.TransactionID)
}

func AdminNewOrderEmail(o OrderInfo) (subject, html string) {
	subject = fmt.Sprintf("[New Order] %s - %s", o.TransactionID, o.ProductTitle)
	html = emailShell(fmt.Sprintf(
		`<h2>Order Baru Masuk</h2><p>Order ID: <strong>%s</strong><br>Produk: %s<br>Jumlah: %d unit<br>Total: <strong>%s</strong><br>Customer: %s (%s)</p><p>Status: <strong>Pending Payment</strong></p>`,
		o.TransactionID, o.ProductTitle, o.Quantity, FormatRupiah(o.Total), o.BuyerEmail, o.BuyerWhatsApp))
	return subject, html
}

// BuyerOrderCreatedWA: konfirmasi order + batas waktu bayar ke pembeli.
func BuyerOrderCreatedWA(o OrderInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Kamu telah order di F-PEDIA*\n\nHalo,\n\nPesanan Anda:\n• Produk: *%s*\n• Jumlah: %d unit\n• Total pembayaran: %s\n• Order ID: %s\n\n",
		o.ProductTitle, o.Quantity, FormatRupiah(o.Total), o.TransactionID)
	if o.PromoText != "" {
		fmt.Fprintf(&b, "*Promo:* %s\n\n", o.PromoText)
	}
	fmt.Fprintf(&b, "Silakan scan QR untuk pembayaran.\n*Harap bayar sebelum: %s*\n\nSetelah terverifikasi, akun akan dikirim ke WhatsApp ini.\n\nTerima kasih!",
		o.ExpiresAt.Format("02 Jan 2006 15:04"))
	return b.String()
}

// BuyerDeliveryWA: detail akun setelah pembayaran terverifikasi.
func BuyerDeliveryWA(o OrderInfo, accounts []Credential) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Terima kasih telah order di F-PEDIA!*\n\nHalo %s,\n\n", orDefault(o.BuyerEmail, "Pelanggan"))
	fmt.Fprintf(&b, "Pembayaran Anda untuk pesanan *%s* (Order ID: %s) telah berhasil.\n\n", o.ProductTitle, o.TransactionID)
	list := FormatAccounts(accounts)
	if list == "" {
		list = "Menunggu pengiriman."
	}
	fmt.Fprintf(&b, "*Detail Akun (%d):*\n%s\n\n", o.Quantity, list)
	if o.Instructions != "" {
		fmt.Fprintf(&b, "*Cara Penggunaan:*\n%s\n\n", o.Instructions)
	}
	if o.PromoText != "" {
		fmt.Fprintf(&b, "*Promo:* %s\n\n", o.PromoText)
	}
	b.WriteString("Terima kasih telah mempercayakan F-PEDIA.")
	return b.String()
}

func AdminPaymentEmail(o OrderInfo, accounts []Credential) (subject, html string) {
	subject = fmt.Sprintf("[Payment Received] %s - %s", o.TransactionID, o.ProductTitle)
	html = emailShell(fmt.Sprintf(
		`<h3>Pembayaran Diterima</h3><p>Order ID: <strong>%s</strong><br>Produk: %s<br>Jumlah: %d<br>Total: %s<br>Customer: %s (%s)<br>Status: <strong>Lunas (Paid)</strong></p><p>Akun Terkirim:</p><pre>%s</pre>`,
		o.TransactionID, o.ProductTitle, o.Quantity, FormatRupiah(o.Total), o.BuyerEmail, o.BuyerWhatsApp, FormatAccounts(accounts)))
	return subject, html
}

func LowStockEmail(productTitle string, remaining int, siteURL string) (subject, html string) {
	subject = fmt.Sprintf("[LOW STOCK] %s - Sisa %d", productTitle, remaining)
	html = emailShell(fmt.Sprintf(
		`<h3 style="color: red;">Peringatan Stok Menipis</h3><p>Produk <strong>%s</strong> tersisa <strong>%d</strong> unit.</p><p>Segera restock untuk menghindari kehabisan stok.</p><p><a href="%s/admin/products">Kelola Stok</a></p>`,
		productTitle, remaining, siteURL))
	return subject, html
}

// PreorderDeliveryWA: pengiriman manual oleh admin (kirim ulang juga pakai ini).
func PreorderDeliveryWA(productTitle string, accounts []Credential) string {
	lines := make([]string, 0, len(accounts))
	for i, a := range accounts {
		lines = append(lines, fmt.Sprintf("%d. Email: %s | Password: %s", i+1, a.Email, a.Password))
	}
	return fmt.Sprintf("*Pesanan Pre-Order Anda Telah Dikirim!*\n\nProduk: *%s*\nJumlah: %d akun\n\n*Detail Akun:*\n%s\n\nSegera ganti password setelah login.\nTerima kasih telah berbelanja di F-PEDIA!",
		productTitle, len(accounts), strings.Join(lines, "\n"))
}

func PreorderDeliveryEmail(productTitle string, accounts []Credential) (subject, html string) {
	subject = "Pre-Order Dikirim: " + productTitle
	rows := make([]string, 0, len(accounts))
	for i, a := range accounts {
		rows = append(rows, fmt.Sprintf("<tr><td>%d</td><td>%s</td><td>%s</td></tr>", i+1, a.Email, a.Password))
	}
	html = emailShell(fmt.Sprintf(
		`<h2>Pesanan Pre-Order Anda Telah Dikirim!</h2><p>Produk: <strong>%s</strong><br>Jumlah: %d akun</p><table border="1" cellpadding="8" cellspacing="0" style="border-collapse:collapse;"><tr><th>No</th><th>Email</th><th>Password</th></tr>%s</table><p>Segera ganti password setelah login.</p><p>Terima kasih telah berbelanja di F-PEDIA!</p>`,
		productTitle, len(accounts), strings.Join(rows, "")))
	return subject, html
}

func OTPEmail(code string) (subject, html string) {
	subject = "Kode OTP F-PEDIA: " + code
	html = emailShell(fmt.Sprintf(
		`<h2>Verifikasi OTP F-PEDIA</h2><p>Kode OTP Anda adalah:</p><h1 style="letter-spacing: 5px;">%s</h1><p>JANGAN BERIKAN kode ini kepada siapapun.</p><p>Kode berlaku selama 5 menit.</p>`, code))
	return subject, html
}

func OTPWhatsApp(code string) string {
	return fmt.Sprintf("Kode OTP F-PEDIA Anda: *%s*\n\nJangan berikan kode ini kepada siapapun via telepon/WA. Berlaku 5 menit.", code)
}

func PaymentReminderEmail(o OrderInfo, siteURL string) (subject, html string) {
	subject = "[Reminder] Menunggu Pembayaran - " + o.ProductTitle
	html = emailShell(fmt.Sprintf(
		`<h3>Halo, pesanan Anda menunggu pembayaran.</h3><p>Produk: <strong>%s</strong><br>Total: %s</p><p>Silakan selesaikan pembayaran agar pesanan segera diproses.</p><p><a href="%s/checkout?order_id=%s">Bayar Sekarang</a></p><p>Jika sudah membayar, abaikan email ini.</p>`,
		o.ProductTitle, FormatRupiah(o.Total), siteURL, o.TransactionID))
	return subject, html
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

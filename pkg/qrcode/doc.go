// Package qrcode renders strings as PNG QR codes, either raw bytes or a
// base64 data URI suitable for an <img> tag.
package qrcode

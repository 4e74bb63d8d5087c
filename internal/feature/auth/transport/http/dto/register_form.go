package dto

// RegisterFormは/registerのフォーム送信を表す構造体です。
// 識別子は不透明な一意文字列（ユーザー名またはメール）であり、
// 形式チェックは行わず必須チェックのみ行います。
type RegisterForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

package dto

// LoginFormは/loginのフォーム送信を表す構造体です。
// バリデーションとして必須チェックを行います。
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

package dto

// SecretFormは/submitのフォーム送信を表す構造体です。
// 空文字列のシークレットも正当な投稿なので必須チェックは行いません。
type SecretForm struct {
	Secret string `form:"secret"`
}

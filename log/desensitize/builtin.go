package desensitize

var (
	// KeyRule 保留密钥前 4 位
	KeyRule = MustNewFieldRule("key", "key", `^(.{4}).+$`, "$1****")

	// NonceRule 随机数整体隐藏
	NonceRule = MustNewFieldRule("nonce", "nonce", `^.+$`, "****")

	// SecretRule 签名密钥整体隐藏
	SecretRule = MustNewFieldRule("secret", "secret", `^.+$`, "******")

	// AlphabetsRule 编码表只保留首行
	AlphabetsRule = MustNewFieldRule("alphabets", "alphabets", `^([^,]*),.*$`, "$1,...")

	// SignatureRule 管理接口签名只保留前 8 位
	SignatureRule = MustNewFieldRule("signature", "signature", `^(.{8}).+$`, "$1...")

	// PhoneRule 手机号 13812345678 -> 138****5678
	PhoneRule = MustNewContentRule("phone", `\b(1[3-9]\d)\d{4}(\d{4})\b`, "$1****$2")
)

// BuiltinRules 返回全部内置规则
func BuiltinRules() []Rule {
	return []Rule{KeyRule, NonceRule, SecretRule, AlphabetsRule, SignatureRule, PhoneRule}
}

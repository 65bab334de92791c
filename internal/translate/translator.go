// internal/translate/translator.go
package translate

import "strings"

// Entry is one dictionary mapping from a working-language source term to
// the provider's query language.
type Entry struct {
	Source string
	Target string
}

// Translator maps working-language terms to the provider's query
// language using a fixed dictionary. Translation never fails; unknown
// terms pass through unchanged and the provider degrades to lower
// relevance.
type Translator struct {
	exact   map[string]string
	ordered []Entry
}

// New returns a translator over the default construction-sourcing
// dictionary (French source terms, Chinese targets).
func New() *Translator {
	return NewWithDictionary(frenchToChineseTerms)
}

// NewWithDictionary builds a translator over a caller-supplied mapping.
// Source terms must be lowercase; list order is the substring-match
// priority order.
func NewWithDictionary(entries []Entry) *Translator {
	exact := make(map[string]string, len(entries))
	for _, e := range entries {
		exact[e.Source] = e.Target
	}
	return &Translator{exact: exact, ordered: entries}
}

// Translate resolves a term: an exact case-insensitive dictionary match
// wins, otherwise the first dictionary source occurring as a substring is
// replaced in place, otherwise the input is returned unchanged.
func (t *Translator) Translate(term string) string {
	lower := strings.ToLower(strings.TrimSpace(term))

	if translated, ok := t.exact[lower]; ok {
		return translated
	}

	for _, e := range t.ordered {
		if strings.Contains(lower, e.Source) {
			return strings.Replace(lower, e.Source, e.Target, 1)
		}
	}

	return term
}

var frenchToChineseTerms = []Entry{
	// Construction
	{"ciment", "水泥"},
	{"béton", "混凝土"},
	{"brique", "砖"},
	{"carrelage", "瓷砖"},
	{"carreau", "瓷砖"},
	{"parquet", "木地板"},
	{"peinture", "油漆"},
	{"plâtre", "石膏"},
	{"fer", "钢铁"},
	{"acier", "钢"},
	{"aluminium", "铝"},
	{"cuivre", "铜"},
	{"tuyau", "管道"},
	{"tube", "管"},
	{"câble", "电缆"},
	{"fil électrique", "电线"},
	{"interrupteur", "开关"},
	{"prise", "插座"},
	{"robinet", "水龙头"},
	{"lavabo", "洗手盆"},
	{"toilette", "马桶"},
	{"wc", "马桶"},
	{"douche", "淋浴"},
	{"baignoire", "浴缸"},
	{"évier", "水槽"},
	{"fenêtre", "窗户"},
	{"porte", "门"},
	{"serrure", "锁"},
	{"poignée", "把手"},
	{"charnière", "铰链"},
	{"vis", "螺丝"},
	{"clou", "钉子"},
	{"boulon", "螺栓"},
	{"écrou", "螺母"},
	// Electricity / climate
	{"climatiseur", "空调"},
	{"ventilateur", "风扇"},
	{"chauffage", "暖气"},
	{"chauffe-eau", "热水器"},
	{"pompe", "水泵"},
	{"générateur", "发电机"},
	{"groupe électrogène", "柴油发电机"},
	{"panneau solaire", "太阳能板"},
	{"led", "LED灯"},
	{"ampoule", "灯泡"},
	{"lustre", "吊灯"},
	{"projecteur", "投光灯"},
	// Furniture
	{"chaise", "椅子"},
	{"table", "桌子"},
	{"bureau", "办公桌"},
	{"armoire", "衣柜"},
	{"lit", "床"},
	{"matelas", "床垫"},
	{"canapé", "沙发"},
	{"étagère", "架子"},
	// Automotive
	{"voiture", "汽车"},
	{"auto", "汽车"},
	{"clé", "钥匙"},
	{"cle", "钥匙"},
	{"boitier", "外壳"},
	{"boîtier", "外壳"},
	{"télécommande", "遥控器"},
	{"telecommande", "遥控器"},
	{"batterie", "电池"},
	{"pneu", "轮胎"},
	{"roue", "车轮"},
	{"phare", "车灯"},
	{"pare-brise", "挡风玻璃"},
	{"rétroviseur", "后视镜"},
	{"moteur", "发动机"},
	{"frein", "刹车"},
	{"embrayage", "离合器"},
	{"amortisseur", "减震器"},
	{"filtre", "过滤器"},
	{"huile", "机油"},
	{"essence", "汽油"},
	// Electronics
	{"téléphone", "手机"},
	{"telephone", "手机"},
	{"coque", "手机壳"},
	{"écran", "屏幕"},
	{"chargeur", "充电器"},
	{"casque", "耳机"},
	{"ordinateur", "电脑"},
	{"clavier", "键盘"},
	{"souris", "鼠标"},
	{"usb", "USB"},
	{"hdmi", "HDMI"},
	// Clothing / textile
	{"vêtement", "服装"},
	{"tissu", "布料"},
	{"textile", "纺织品"},
	{"coton", "棉"},
	{"soie", "丝绸"},
	{"cuir", "皮革"},
	{"chaussure", "鞋子"},
	{"sac", "包"},
	// General
	{"accessoire", "配件"},
	{"pièce", "零件"},
	{"piece", "零件"},
	{"rechange", "备件"},
	{"plastique", "塑料"},
	{"verre", "玻璃"},
	{"bois", "木材"},
	{"métal", "金属"},
	{"metal", "金属"},
}

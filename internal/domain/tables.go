package domain

var Tables = []interface{}{
	// System
	&SysOpr{},
	&SysOprLog{},
	// Content
	&SiteConfig{},
	&GalleryCategory{},
	&Price{},
	&Review{},
	// Intake
	&Registration{},
	&MailOutbox{},
}

package urlnorm

// defaultTrackingParams is the built-in blocklist of query parameter names
// that carry tracking state rather than page identity. Grouped loosely by
// platform. The generic short names at the bottom (id, sid, pid, ...) are a
// known precision/recall tradeoff; callers can rescue them via New's keep
// argument.
var defaultTrackingParams = []string{
	// Urchin / Google Analytics.
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"utm_id", "utm_name", "utm_cid", "utm_reader", "utm_referrer",
	"utm_social", "utm_social-type", "utm_brand", "utm_viz_id",
	"utm_pubreferrer", "utm_swu", "utm_source_platform",
	"utm_creative_format", "utm_marketing_tactic",

	// Google Ads / DoubleClick / search result decoration.
	"gclid", "gclsrc", "dclid", "gbraid", "wbraid", "gad_source", "srsltid",
	"_ga", "_gl", "_gac", "ga_source", "ga_medium", "ga_term", "ga_content",
	"ga_campaign", "ga_place", "gs_l", "gws_rd", "ved", "ei", "usg", "aqs",
	"sourceid", "sxsrf", "uact", "esrc", "sca_esv", "sca_upv",

	// Meta (Facebook / Instagram).
	"fbclid", "fb_action_ids", "fb_action_types", "fb_source", "fb_ref",
	"fbadid", "igshid", "igsh", "ig_rid", "mibextid", "x-clickref",

	// Microsoft / Bing.
	"msclkid", "msockid", "cvid", "form", "qft",

	// Twitter / X.
	"twclid", "ref_src", "ref_url", "twterm", "twcamp", "twgr",

	// TikTok.
	"ttclid", "tt_medium", "tt_content", "share_app_id", "share_link_id",

	// LinkedIn.
	"li_fat_id", "trk", "trkcampaign", "lipi", "licu", "original_referer",

	// Pinterest, Snapchat, Reddit.
	"epik", "pp", "sccid", "rdt_cid", "share_id", "ref_campaign", "ref_source",

	// Mailchimp, Klaviyo, HubSpot, Marketo, ActiveCampaign, Drip.
	"mc_cid", "mc_eid", "_ke", "_kx", "mkt_tok", "_hsenc", "_hsmi",
	"hsctatracking", "hsa_acc", "hsa_cam", "hsa_grp", "hsa_ad", "hsa_src",
	"hsa_tgt", "hsa_kw", "hsa_mt", "hsa_net", "hsa_ver", "hsa_la", "hsa_ol",
	"vgo_ee", "__s", "vero_id", "vero_conv",

	// Eloqua / ExactTarget / Salesforce Marketing Cloud.
	"elqtrackid", "elqtrack", "elq", "elqaid", "elqat", "elqcampaignid",
	"et_rid", "et_cid", "sfmc_id", "sfmc_sub", "j", "jb", "l", "u", "mid2",

	// Listrak, Blueshift, Omnisend, dotdigital, Iterable.
	"trk_contact", "trk_msg", "trk_module", "trk_sid",
	"bsft_clkid", "bsft_uid", "bsft_aaid", "bsft_eid", "bsft_mid",
	"bsft_txnid", "bsft_link_id", "omnisendcontactid", "dm_i", "ito",
	"_branch_match_id", "_branch_referrer",

	// Matomo / Piwik.
	"pk_campaign", "pk_kwd", "pk_source", "pk_medium", "pk_content", "pk_cid",
	"mtm_campaign", "mtm_keyword", "mtm_source", "mtm_medium", "mtm_content",
	"mtm_cid", "mtm_group", "mtm_placement", "piwik_campaign", "piwik_kwd",

	// Adobe / Omniture / Marin.
	"s_cid", "s_kwcid", "ef_id", "icid", "mkwid", "pcrid", "pgrid", "ptaid",

	// Affiliate networks (Impact, CJ, Rakuten, Awin, ShareASale, Partnerize).
	"irclickid", "irgwc", "im_ref", "cjevent", "cjdata", "ranmid", "raneaid",
	"ransiteid", "zanpid", "awc", "sscid", "clickid", "click_id", "aff_id",
	"affiliate_id", "affid", "afftrack", "aff_sub", "aff_sub2", "aff_sub3",
	"aff_sub4", "aff_sub5", "pcrtr", "prtnr",

	// Outbrain, Taboola, Criteo.
	"ob_click_id", "oborigurl", "outbrainclickid", "dicbo", "tblci",
	"taboola_click_id", "cto_pld",

	// Yandex, Alibaba / AliExpress.
	"yclid", "ysclid", "_openstat", "spm", "scm", "pvid", "algo_pvid",
	"algo_expid", "btsid", "ws_ab_test",

	// Amazon result decoration.
	"tag", "ascsubtag", "pd_rd_i", "pd_rd_r", "pd_rd_w", "pd_rd_wg",
	"pf_rd_i", "pf_rd_m", "pf_rd_p", "pf_rd_r", "pf_rd_s", "pf_rd_t",
	"qid", "sprefix", "crid", "linkcode", "linkid", "camp", "creativeasin",

	// Webtrends, Wicked Reports, GoDaddy, misc analytics.
	"wt_zmc", "wt_mc", "wickedid", "wickedsource", "gdfms", "gdftrk", "gdffi",
	"_bta_tid", "_bta_c", "nr_email_referer", "ncid", "cmpid", "cmp",
	"soc_src", "soc_trk", "mlsubscriber", "ml_subscriber",
	"ml_subscriber_hash", "oly_anon_id", "oly_enc_id", "rb_clickid",
	"sb_referer_host", "guce_referrer", "guce_referrer_sig", "ceid", "emci",
	"emdi", "hctid", "hctid2", "sourceid2", "refsrc", "cmplz_region_redirect",

	// Session-ish / ad-id generic parameters. Deliberately aggressive.
	"adid", "ad_id", "adsetid", "adset_id", "adgroupid", "adgroup_id",
	"campaignid", "campaign_id", "creative_id", "creativeid", "placementid",
	"placement_id", "session_id", "visitor_id", "subscriber_id", "broaddate",
	"ref", "referer_id", "referrer_id", "recruiter_id", "share_token",
	"share_source", "share_medium", "share_plat", "share_session_id",
	"id", "sid", "pid", "cid", "eid", "uid", "tid", "vid", "mid", "wid",
	"rid", "fid", "bid", "kid", "xid", "yid", "zid",
}
